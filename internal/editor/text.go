package editor

import (
	"strings"
	"unicode/utf8"

	"plan-cli/internal/outline"
)

type Mark int

const (
	MarkBold Mark = iota
	MarkItalic
	MarkUnderline
	MarkStrikethrough
)

// editContent replaces the content of line i without a structural commit.
// The line stays dirty until focus leaves it or Commit is called.
func (e *Engine) editContent(i int, c outline.Content) {
	next, err := e.doc.ReplaceContent(i, c)
	if err != nil {
		return
	}
	e.doc = next
	e.dirty = true
	start, end := e.doc.RunStart(i), e.doc.RunEnd(i)
	for k := start; k <= end; k++ {
		l, _ := e.doc.At(k)
		if _, ok := e.deferred[l.ID]; ok {
			e.deferred[l.ID] = true
		}
	}
}

// InsertText types s at the cursor using the current typing marks. Newlines
// are soft breaks in descriptions and plain spaces in titles.
func (e *Engine) InsertText(s string) bool {
	if s == "" {
		return false
	}
	e.sel.clear()
	return e.insertText(s)
}

func (e *Engine) insertText(s string) bool {
	i := e.curIdx()
	cur, _ := e.doc.At(i)
	if cur.IsTitle() {
		s = strings.ReplaceAll(s, "\n", " ")
	}
	e.editContent(i, cur.Content.InsertText(e.cursor.Offset, s, e.typing))
	e.cursor.Offset += utf8.RuneCountInString(s)
	return true
}

// InsertToken places tok at the cursor followed by a space.
func (e *Engine) InsertToken(tok outline.Token) bool {
	if !tok.Kind.Valid() || tok.RefID == "" {
		return false
	}
	e.sel.clear()
	tok = e.tokens.Resolve(tok)
	i := e.curIdx()
	cur, _ := e.doc.At(i)
	off := e.cursor.Offset
	c := cur.Content.InsertToken(off, tok).InsertText(off+1, " ", outline.Marks{})
	e.editContent(i, c)
	e.cursor.Offset = off + 2
	return true
}

// InsertTag inserts a reference to a known tag, matched by id or name.
func (e *Engine) InsertTag(ref string) error {
	tok, err := e.tokens.TagToken(ref)
	if err != nil {
		return err
	}
	e.InsertToken(tok)
	return nil
}

// InsertDateMention accepts the expressions understood by inline.ParseDate.
func (e *Engine) InsertDateMention(expr string) error {
	tok, err := e.tokens.DateToken(expr)
	if err != nil {
		return err
	}
	e.InsertToken(tok)
	return nil
}

func (e *Engine) TypingMarks() outline.Marks { return e.typing }

// ToggleMark flips a mark for text typed from now on.
func (e *Engine) ToggleMark(m Mark) {
	switch m {
	case MarkBold:
		e.typing.Bold = !e.typing.Bold
	case MarkItalic:
		e.typing.Italic = !e.typing.Italic
	case MarkUnderline:
		e.typing.Underline = !e.typing.Underline
	case MarkStrikethrough:
		e.typing.Strikethrough = !e.typing.Strikethrough
	}
}

func (e *Engine) SetColor(c string) { e.typing.Color = c }

// RefreshTokens re-resolves every token label against the registry, for
// instance after a tag was renamed. It commits when anything changed.
func (e *Engine) RefreshTokens() bool {
	next := e.doc
	changed := false
	for i := 0; i < next.Len(); i++ {
		l, _ := next.At(i)
		c := e.tokens.ResolveContent(l.Content)
		if c.Equal(l.Content) {
			continue
		}
		next, _ = next.ReplaceContent(i, c)
		changed = true
	}
	if !changed {
		return false
	}
	e.doc = next
	e.commit()
	return true
}

package editor

import (
	"strings"

	"go.uber.org/zap"

	"plan-cli/internal/clipboard"
	"plan-cli/internal/outline"
)

// copyRange returns the lines a copy applies to: the runs of every selected
// line, or the focused run when nothing is selected.
func (e *Engine) copyRange() []outline.Line {
	seen := map[int]struct{}{}
	var idx []int
	for _, i := range e.targets() {
		for k := e.doc.RunStart(i); k <= e.doc.RunEnd(i); k++ {
			if _, ok := seen[k]; !ok {
				seen[k] = struct{}{}
				idx = append(idx, k)
			}
		}
	}
	out := make([]outline.Line, 0, len(idx))
	for _, i := range idx {
		l, _ := e.doc.At(i)
		out = append(out, l)
	}
	return out
}

// Copy encodes the selection (or the focused line) in both clipboard forms.
func (e *Engine) Copy() clipboard.Payload {
	p := e.codec.Encode(e.copyRange())
	e.lastCopy = &p
	return p
}

// Cut copies and then removes what was copied.
func (e *Engine) Cut() clipboard.Payload {
	p := e.Copy()
	if e.sel.active() {
		e.deleteSelection()
		return p
	}
	i := e.doc.RunStart(e.curIdx())
	l, _ := e.doc.At(i)
	e.RemoveLine(l.ID)
	return p
}

// PasteText pastes text read from the system clipboard. When it is what this
// engine last copied, the rich form of that copy is used instead.
func (e *Engine) PasteText(s string) bool {
	if e.lastCopy != nil && e.lastCopy.Plain == s {
		return e.Paste(*e.lastCopy)
	}
	return e.Paste(clipboard.Payload{Plain: s})
}

// Paste inserts a clipboard payload. A single line is spliced in at the
// cursor; several lines are inserted as new lines after the focused run.
func (e *Engine) Paste(p clipboard.Payload) bool {
	lines, err := e.codec.Decode(p)
	if err != nil {
		e.log.Debug("rich paste rejected, using plain text", zap.Error(err))
	}
	if len(lines) == 0 {
		return false
	}
	e.sel.clear()
	if len(lines) == 1 {
		return e.pasteInline(lines[0].Content)
	}
	return e.pasteLines(lines)
}

func (e *Engine) pasteInline(c outline.Content) bool {
	i := e.curIdx()
	cur, _ := e.doc.At(i)
	c = e.tokens.ResolveContent(c)
	if cur.IsTitle() {
		c = flattenBreaks(c)
	}
	off := e.cursor.Offset
	e.editContent(i, cur.Content.InsertContent(off, c))
	e.cursor.Offset = off + c.Len()
	return true
}

func (e *Engine) pasteLines(lines []outline.Line) bool {
	i := e.curIdx()
	start := e.doc.RunStart(i)
	anchor, _ := e.doc.At(start)
	pos := e.doc.RunEnd(i) + 1
	replace := anchor.Content.IsEmpty() && e.doc.PairedDescription(start) < 0

	base := lines[0].Level
	pasted := make([]outline.Line, 0, len(lines))
	lastTitle := ""
	for _, l := range lines {
		l = l.Clone()
		l.Level = max(l.Level-base+anchor.Level, 0)
		l.DomainRef = ""
		l.Content = e.tokens.ResolveContent(l.Content)
		if l.IsDescription() && lastTitle != "" {
			l.ID = outline.DescriptionID(lastTitle)
		} else {
			l.Mode = outline.ModeTitle
			l.ID = e.newID()
			l.Content = flattenBreaks(l.Content)
			lastTitle = l.ID
		}
		if l.IsDescription() {
			lastTitle = ""
		}
		pasted = append(pasted, l)
	}

	cur := e.doc.Lines()
	merged := make([]outline.Line, 0, len(cur)+len(pasted))
	if replace {
		merged = append(merged, cur[:start]...)
		merged = append(merged, pasted...)
		merged = append(merged, cur[start+1:]...)
	} else {
		merged = append(merged, cur[:pos]...)
		merged = append(merged, pasted...)
		merged = append(merged, cur[pos:]...)
	}
	next, err := outline.NewDocument(outline.Normalize(merged, e.maxLevel, e.newID))
	last := pasted[len(pasted)-1]
	return e.structural("paste", next, err, Cursor{LineID: last.ID, Offset: last.Content.Len()})
}

// flattenBreaks turns soft breaks into spaces for title content.
func flattenBreaks(c outline.Content) outline.Content {
	out := c.Clone()
	for i := range out {
		if out[i].Token == nil {
			out[i].Text = strings.ReplaceAll(out[i].Text, "\n", " ")
		}
	}
	return out.Normalize()
}

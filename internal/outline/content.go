package outline

import (
	"strings"
	"unicode/utf8"
)

type TokenKind string

const (
	TokenTag         TokenKind = "tag"
	TokenDateMention TokenKind = "dateMention"
)

func (k TokenKind) Valid() bool {
	return k == TokenTag || k == TokenDateMention
}

// Token is an atomic inline element. It occupies exactly one position in its
// line's content and is never split or partially deleted.
type Token struct {
	Kind        TokenKind `json:"kind"`
	RefID       string    `json:"refId"`
	DisplayText string    `json:"displayText,omitempty"`
}

// Label is the text used when a token is flattened to plain text.
func (t Token) Label() string {
	if strings.TrimSpace(t.DisplayText) != "" {
		return t.DisplayText
	}
	return t.RefID
}

type Marks struct {
	Bold          bool   `json:"bold,omitempty"`
	Italic        bool   `json:"italic,omitempty"`
	Underline     bool   `json:"underline,omitempty"`
	Strikethrough bool   `json:"strikethrough,omitempty"`
	Color         string `json:"color,omitempty"`
}

func (m Marks) IsZero() bool { return m == Marks{} }

// Span is either a run of text carrying marks, or a single token.
type Span struct {
	Text  string `json:"text,omitempty"`
	Marks Marks  `json:"marks,omitzero"`
	Token *Token `json:"token,omitempty"`
}

func (s Span) IsToken() bool { return s.Token != nil }

// Len is the number of addressable positions the span occupies.
func (s Span) Len() int {
	if s.Token != nil {
		return 1
	}
	return utf8.RuneCountInString(s.Text)
}

// Content is the ordered list of spans making up a line.
//
// Content values are treated as immutable: every operation returns a fresh
// slice and leaves the receiver untouched.
type Content []Span

// Text returns content holding a single unmarked run.
func Text(s string) Content {
	if s == "" {
		return nil
	}
	return Content{{Text: s}}
}

func (c Content) Len() int {
	n := 0
	for _, sp := range c {
		n += sp.Len()
	}
	return n
}

func (c Content) IsEmpty() bool { return c.Len() == 0 }

// PlainText flattens the content; tokens render as their label.
func (c Content) PlainText() string {
	var b strings.Builder
	for _, sp := range c {
		if sp.Token != nil {
			b.WriteString(sp.Token.Label())
			continue
		}
		b.WriteString(sp.Text)
	}
	return b.String()
}

func (c Content) Clone() Content {
	if len(c) == 0 {
		return nil
	}
	out := make(Content, len(c))
	for i, sp := range c {
		out[i] = sp
		if sp.Token != nil {
			tok := *sp.Token
			out[i].Token = &tok
		}
	}
	return out
}

// Normalize merges adjacent runs with identical marks and drops empty runs.
func (c Content) Normalize() Content {
	out := make(Content, 0, len(c))
	for _, sp := range c {
		if sp.Token != nil {
			tok := *sp.Token
			out = append(out, Span{Token: &tok})
			continue
		}
		if sp.Text == "" {
			continue
		}
		if n := len(out); n > 0 && out[n-1].Token == nil && out[n-1].Marks == sp.Marks {
			out[n-1].Text += sp.Text
			continue
		}
		out = append(out, Span{Text: sp.Text, Marks: sp.Marks})
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Split cuts the content at position off. Tokens never straddle a cut.
func (c Content) Split(off int) (Content, Content) {
	var head, tail Content
	pos := 0
	for _, sp := range c {
		n := sp.Len()
		switch {
		case pos+n <= off:
			head = append(head, sp)
		case pos >= off:
			tail = append(tail, sp)
		default:
			r := []rune(sp.Text)
			cut := off - pos
			head = append(head, Span{Text: string(r[:cut]), Marks: sp.Marks})
			tail = append(tail, Span{Text: string(r[cut:]), Marks: sp.Marks})
		}
		pos += n
	}
	return head.Normalize(), tail.Normalize()
}

func (c Content) Concat(o Content) Content {
	out := make(Content, 0, len(c)+len(o))
	out = append(out, c...)
	out = append(out, o...)
	return out.Normalize()
}

func (c Content) InsertText(off int, s string, m Marks) Content {
	if s == "" {
		return c.Normalize()
	}
	head, tail := c.Split(off)
	return head.Concat(Content{{Text: s, Marks: m}}).Concat(tail)
}

func (c Content) InsertToken(off int, tok Token) Content {
	head, tail := c.Split(off)
	return head.Concat(Content{{Token: &tok}}).Concat(tail)
}

// InsertContent splices o into c at off.
func (c Content) InsertContent(off int, o Content) Content {
	head, tail := c.Split(off)
	return head.Concat(o).Concat(tail)
}

// Delete removes positions [from, to).
func (c Content) Delete(from, to int) Content {
	if to <= from {
		return c.Normalize()
	}
	head, _ := c.Split(from)
	_, tail := c.Split(to)
	return head.Concat(tail)
}

// Slice returns positions [from, to).
func (c Content) Slice(from, to int) Content {
	_, rest := c.Split(from)
	mid, _ := rest.Split(to - from)
	return mid
}

// TokenAt reports the token occupying position off, if any.
func (c Content) TokenAt(off int) (Token, bool) {
	pos := 0
	for _, sp := range c {
		n := sp.Len()
		if off >= pos && off < pos+n {
			if sp.Token != nil {
				return *sp.Token, true
			}
			return Token{}, false
		}
		pos += n
	}
	return Token{}, false
}

func (c Content) Tokens() []Token {
	var out []Token
	for _, sp := range c {
		if sp.Token != nil {
			out = append(out, *sp.Token)
		}
	}
	return out
}

// MapTokens returns a copy with every token replaced by fn(token).
func (c Content) MapTokens(fn func(Token) Token) Content {
	out := c.Clone()
	for i := range out {
		if out[i].Token != nil {
			tok := fn(*out[i].Token)
			out[i].Token = &tok
		}
	}
	return out
}

func (c Content) Equal(o Content) bool {
	a, b := c.Normalize(), o.Normalize()
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Text != b[i].Text || a[i].Marks != b[i].Marks {
			return false
		}
		if (a[i].Token == nil) != (b[i].Token == nil) {
			return false
		}
		if a[i].Token != nil && *a[i].Token != *b[i].Token {
			return false
		}
	}
	return true
}

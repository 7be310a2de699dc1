// Package clipboard converts outline selections to and from clipboard payloads.
//
// Every payload carries two forms: a plain-text rendering for foreign
// applications and a lossless rich form for pasting back into an outline.
package clipboard

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"plan-cli/internal/outline"
)

const (
	RichFormat  = "plan-outline"
	RichVersion = 1

	DefaultIndentWidth = 2
)

type Payload struct {
	Plain string `json:"plain"`
	Rich  string `json:"rich,omitempty"`
}

// PasteParseFailure reports a rich payload that could not be decoded.
type PasteParseFailure struct {
	Reason string
	Err    error
}

func (e PasteParseFailure) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("paste parse failure: %s: %v", e.Reason, e.Err)
	}
	return "paste parse failure: " + e.Reason
}

func (e PasteParseFailure) Unwrap() error { return e.Err }

type richDocument struct {
	Format  string         `json:"format"`
	Version int            `json:"version"`
	Lines   []outline.Line `json:"lines"`
}

type Codec struct {
	indentWidth int
}

func NewCodec(indentWidth int) *Codec {
	if indentWidth <= 0 {
		indentWidth = DefaultIndentWidth
	}
	return &Codec{indentWidth: indentWidth}
}

func (c *Codec) IndentWidth() int { return c.indentWidth }

// Encode renders both forms. Rich encoding of outline lines cannot fail short
// of a json bug, so a failure leaves Rich empty and paste falls back to Plain.
func (c *Codec) Encode(lines []outline.Line) Payload {
	rich, _ := c.EncodeRich(lines)
	return Payload{Plain: c.EncodePlain(lines), Rich: rich}
}

// EncodePlain renders titles as bullets and descriptions as indented text.
func (c *Codec) EncodePlain(lines []outline.Line) string {
	var b strings.Builder
	for i, l := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		indent := strings.Repeat(" ", c.indentWidth*l.Level)
		if l.IsTitle() {
			b.WriteString(indent)
			b.WriteString("- ")
			b.WriteString(l.Content.PlainText())
			continue
		}
		for j, seg := range strings.Split(l.Content.PlainText(), "\n") {
			if j > 0 {
				b.WriteByte('\n')
			}
			b.WriteString(indent)
			b.WriteString(seg)
		}
	}
	return b.String()
}

func (c *Codec) EncodeRich(lines []outline.Line) (string, error) {
	doc := richDocument{Format: RichFormat, Version: RichVersion, Lines: lines}
	if doc.Lines == nil {
		doc.Lines = []outline.Line{}
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DecodeRich parses the rich form. Ids and levels are returned as stored;
// callers decide how to place them in a document.
func (c *Codec) DecodeRich(s string) ([]outline.Line, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, PasteParseFailure{Reason: "empty rich payload"}
	}
	var doc richDocument
	if err := json.Unmarshal([]byte(s), &doc); err != nil {
		return nil, PasteParseFailure{Reason: "invalid json", Err: err}
	}
	if doc.Format != RichFormat {
		return nil, PasteParseFailure{Reason: fmt.Sprintf("unknown format %q", doc.Format)}
	}
	if doc.Version != RichVersion {
		return nil, PasteParseFailure{Reason: fmt.Sprintf("unsupported version %d", doc.Version)}
	}
	for i, l := range doc.Lines {
		if !l.Mode.Valid() {
			return nil, PasteParseFailure{Reason: fmt.Sprintf("line %d: invalid mode %q", i, l.Mode)}
		}
		if l.Level < 0 {
			return nil, PasteParseFailure{Reason: fmt.Sprintf("line %d: negative level", i)}
		}
		for _, sp := range l.Content {
			if sp.Token != nil && (!sp.Token.Kind.Valid() || sp.Token.RefID == "") {
				return nil, PasteParseFailure{Reason: fmt.Sprintf("line %d: invalid token", i)}
			}
		}
	}
	return doc.Lines, nil
}

// A bullet glyph only counts when whitespace (or the end of the line) follows,
// so text such as "-5 degrees" keeps its first character.
var bulletRe = regexp.MustCompile(`^[●○–□▸•◦▪\-*➢](?:\s|$)`)

// DecodePlain turns foreign text into title lines. Indentation (tabs count
// as one level) sets the level and a leading bullet glyph is dropped. Blank
// lines carry no content and are skipped.
func (c *Codec) DecodePlain(s string) []outline.Line {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	var out []outline.Line
	for _, raw := range strings.Split(s, "\n") {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		raw = strings.ReplaceAll(raw, "\t", strings.Repeat(" ", c.indentWidth))
		text := strings.TrimLeft(raw, " ")
		level := (len(raw) - len(text)) / c.indentWidth
		text = bulletRe.ReplaceAllString(text, "")
		out = append(out, outline.NewTitle("", level, outline.Text(strings.TrimRight(text, " "))))
	}
	return out
}

// Decode prefers the rich form and falls back to plain text. The returned
// lines are always usable; the error only reports why rich decoding was
// skipped.
func (c *Codec) Decode(p Payload) ([]outline.Line, error) {
	if strings.TrimSpace(p.Rich) != "" {
		lines, err := c.DecodeRich(p.Rich)
		if err == nil {
			return lines, nil
		}
		return c.DecodePlain(p.Plain), err
	}
	return c.DecodePlain(p.Plain), nil
}

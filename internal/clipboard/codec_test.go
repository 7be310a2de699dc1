package clipboard

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"plan-cli/internal/outline"
)

func sampleLines() []outline.Line {
	return []outline.Line{
		{
			ID:    "a",
			Level: 0,
			Mode:  outline.ModeTitle,
			Content: outline.Content{
				{Text: "Ship ", Marks: outline.Marks{Bold: true}},
				{Token: &outline.Token{Kind: outline.TokenTag, RefID: "t1", DisplayText: "#Work"}},
				{Text: " release", Marks: outline.Marks{Color: "#ff0000", Strikethrough: true}},
			},
			DomainRef: "a",
		},
		{
			ID:      outline.DescriptionID("a"),
			Level:   1,
			Mode:    outline.ModeDescription,
			Content: outline.Content{{Text: "line one\nline two"}},
		},
		{
			ID:    "b",
			Level: 1,
			Mode:  outline.ModeTitle,
			Content: outline.Content{
				{Token: &outline.Token{Kind: outline.TokenDateMention, RefID: "2025-12-24", DisplayText: "📅Wed Dec 24"}},
				{Text: " call", Marks: outline.Marks{Italic: true, Underline: true}},
			},
		},
		{ID: "c", Level: 0, Mode: outline.ModeTitle},
	}
}

func TestRichRoundTrip(t *testing.T) {
	c := NewCodec(2)
	in := sampleLines()
	s, err := c.EncodeRich(in)
	if err != nil {
		t.Fatalf("EncodeRich: %v", err)
	}
	out, err := c.DecodeRich(s)
	if err != nil {
		t.Fatalf("DecodeRich: %v", err)
	}
	if diff := cmp.Diff(in, out, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestEncodePlain(t *testing.T) {
	got := NewCodec(2).EncodePlain(sampleLines())
	want := "- Ship #Work release\n  line one\n  line two\n  - 📅Wed Dec 24 call\n- "
	if got != want {
		t.Fatalf("plain mismatch:\n got %q\nwant %q", got, want)
	}
}

func TestDecode_FallsBackToPlainOnForeignRich(t *testing.T) {
	c := NewCodec(2)
	lines, err := c.Decode(Payload{Plain: "• one\n\t◦ two\n\n    three", Rich: `<html>nope</html>`})
	var ppf PasteParseFailure
	if !errors.As(err, &ppf) {
		t.Fatalf("expected PasteParseFailure, got %v", err)
	}
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	wantText := []string{"one", "two", "three"}
	wantLevel := []int{0, 1, 2}
	for i := range lines {
		if lines[i].Content.PlainText() != wantText[i] || lines[i].Level != wantLevel[i] || !lines[i].IsTitle() {
			t.Fatalf("line %d: got %q level %d mode %s", i, lines[i].Content.PlainText(), lines[i].Level, lines[i].Mode)
		}
	}
}

func TestDecodeRich_RejectsWrongFormat(t *testing.T) {
	c := NewCodec(2)
	for _, s := range []string{
		`{"format":"other","version":1,"lines":[]}`,
		`{"format":"plan-outline","version":9,"lines":[]}`,
		`{"format":"plan-outline","version":1,"lines":[{"id":"x","level":0,"mode":"bogus"}]}`,
		`{"format":"plan-outline","version":1,"lines":[{"id":"x","level":0,"mode":"title","content":[{"token":{"kind":"tag"}}]}]}`,
	} {
		if _, err := c.DecodeRich(s); err == nil {
			t.Fatalf("expected failure for %s", s)
		}
	}
}

func TestEncodeDecodePlain_PreservesTextAndLevels(t *testing.T) {
	c := NewCodec(4)
	in := []outline.Line{
		outline.NewTitle("a", 0, outline.Text("Root")),
		outline.NewTitle("b", 1, outline.Text("Child")),
		outline.NewTitle("c", 2, outline.Text("- dash kept")),
	}
	out := c.DecodePlain(c.EncodePlain(in))
	for i := range in {
		if out[i].Level != in[i].Level || out[i].Content.PlainText() != in[i].Content.PlainText() {
			t.Fatalf("line %d: got %q@%d want %q@%d", i, out[i].Content.PlainText(), out[i].Level, in[i].Content.PlainText(), in[i].Level)
		}
	}
}

func TestDecodePlain_GlyphWithoutSpaceIsText(t *testing.T) {
	c := NewCodec(2)
	cases := map[string]string{
		"-5 degrees outside": "-5 degrees outside",
		"*important* call":   "*important* call",
		"•dot":               "•dot",
		"- bullet":           "bullet",
		"* star":             "star",
		"\t• tabbed":         "tabbed",
	}
	for in, want := range cases {
		out := c.DecodePlain(in)
		if len(out) != 1 {
			t.Fatalf("%q: expected one line, got %d", in, len(out))
		}
		if got := out[0].Content.PlainText(); got != want {
			t.Fatalf("%q: got %q, want %q", in, got, want)
		}
	}
}

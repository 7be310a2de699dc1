package outline

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestContent_TokenOccupiesOnePosition(t *testing.T) {
	c := Text("buy ").InsertToken(4, Token{Kind: TokenTag, RefID: "tag-1", DisplayText: "#groceries"}).InsertText(5, " milk", Marks{})
	if got := c.Len(); got != 10 {
		t.Fatalf("expected len 10, got %d", got)
	}
	if _, ok := c.TokenAt(4); !ok {
		t.Fatalf("expected token at position 4")
	}
	if got := c.PlainText(); got != "buy #groceries milk" {
		t.Fatalf("unexpected plain text %q", got)
	}

	// Deleting the token's single position removes it whole.
	got := c.Delete(4, 5)
	if got.PlainText() != "buy  milk" || len(got.Tokens()) != 0 {
		t.Fatalf("expected token removed as a unit, got %q (%d tokens)", got.PlainText(), len(got.Tokens()))
	}
}

func TestContent_SplitKeepsMarks(t *testing.T) {
	bold := Marks{Bold: true}
	c := Content{{Text: "héllo", Marks: bold}, {Text: " world"}}
	head, tail := c.Split(3)
	want := Content{{Text: "hél", Marks: bold}}
	if diff := cmp.Diff(want, head); diff != "" {
		t.Fatalf("head mismatch (-want +got):\n%s", diff)
	}
	want = Content{{Text: "lo", Marks: bold}, {Text: " world"}}
	if diff := cmp.Diff(want, tail); diff != "" {
		t.Fatalf("tail mismatch (-want +got):\n%s", diff)
	}
	if !head.Concat(tail).Equal(c) {
		t.Fatalf("expected concat to restore content")
	}
}

func TestContent_NormalizeMergesEqualRuns(t *testing.T) {
	c := Content{{Text: "a"}, {Text: ""}, {Text: "b"}, {Text: "c", Marks: Marks{Italic: true}}}
	got := c.Normalize()
	want := Content{{Text: "ab"}, {Text: "c", Marks: Marks{Italic: true}}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("normalize mismatch (-want +got):\n%s", diff)
	}
	if Content(nil).Normalize() != nil {
		t.Fatalf("expected nil for empty content")
	}
}

func TestContent_SliceAndInsertContent(t *testing.T) {
	c := Text("abcdef")
	if got := c.Slice(2, 4).PlainText(); got != "cd" {
		t.Fatalf("expected cd, got %q", got)
	}
	got := c.InsertContent(3, Content{{Text: "X", Marks: Marks{Underline: true}}})
	if got.PlainText() != "abcXdef" || len(got) != 3 {
		t.Fatalf("unexpected insert result %#v", got)
	}
}

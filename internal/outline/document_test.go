package outline

import (
	"errors"
	"fmt"
	"testing"
)

func mustDoc(t *testing.T, lines ...Line) Document {
	t.Helper()
	d, err := NewDocument(lines)
	if err != nil {
		t.Fatalf("NewDocument: %v", err)
	}
	return d
}

func title(id string, level int, text string) Line { return NewTitle(id, level, Text(text)) }

func desc(titleID string, level int, text string) Line {
	return Line{ID: DescriptionID(titleID), Level: level, Mode: ModeDescription, Content: Text(text)}
}

func TestValidate_RejectsHoles(t *testing.T) {
	cases := map[string][]Line{
		"empty":            nil,
		"first-indented":   {title("a", 1, "")},
		"skip-level":       {title("a", 0, ""), title("b", 2, "")},
		"orphan-desc":      {desc("a", 0, "")},
		"mismatched-desc":  {title("a", 0, ""), desc("b", 1, "")},
		"dup-id":           {title("a", 0, ""), title("a", 0, "")},
		"token-without-id": {NewTitle("a", 0, Content{{Token: &Token{Kind: TokenTag}}})},
	}
	for name, lines := range cases {
		var sv StructuralViolation
		if err := Validate(lines); !errors.As(err, &sv) {
			t.Fatalf("%s: expected StructuralViolation, got %v", name, err)
		}
	}
}

func TestInsertAt_RejectsLevelBeyondPredecessor(t *testing.T) {
	d := mustDoc(t, title("a", 0, "A"))
	if _, err := d.InsertAt(1, title("b", 2, "")); err == nil {
		t.Fatalf("expected violation")
	}
	d2, err := d.InsertAt(1, title("b", 1, ""))
	if err != nil {
		t.Fatalf("InsertAt: %v", err)
	}
	if d.Len() != 1 || d2.Len() != 2 {
		t.Fatalf("expected copy-on-write, got %d/%d", d.Len(), d2.Len())
	}
}

func TestInsertAt_CannotSplitPair(t *testing.T) {
	d := mustDoc(t, title("a", 0, "A"), desc("a", 1, "notes"))
	if _, err := d.InsertAt(1, title("b", 0, "")); err == nil {
		t.Fatalf("expected violation inserting between title and description")
	}
}

func TestRemoveAt_LastLineClearsContent(t *testing.T) {
	d := mustDoc(t, title("a", 0, "Buy milk"))
	d2, err := d.RemoveAt(0)
	if err != nil {
		t.Fatalf("RemoveAt: %v", err)
	}
	if d2.Len() != 1 {
		t.Fatalf("expected document to keep one line, got %d", d2.Len())
	}
	l, _ := d2.At(0)
	if l.ID != "a" || !l.Content.IsEmpty() {
		t.Fatalf("expected cleared line a, got %#v", l)
	}
}

func TestRemoveAt_ReclampsFollowers(t *testing.T) {
	d := mustDoc(t, title("a", 0, ""), title("b", 1, ""), title("c", 2, ""), title("d", 1, ""))
	d2, err := d.RemoveAt(1)
	if err != nil {
		t.Fatalf("RemoveAt: %v", err)
	}
	got := d2.Levels()
	want := []int{0, 1, 1}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected levels %v, got %v", want, got)
		}
	}
}

func TestRemoveAt_TitleWithDescriptionRejected(t *testing.T) {
	d := mustDoc(t, title("a", 0, ""), desc("a", 1, ""), title("b", 0, ""))
	if _, err := d.RemoveAt(0); err == nil {
		t.Fatalf("expected violation removing a title that owns a description")
	}
}

func TestSetLevel_Bounds(t *testing.T) {
	d := mustDoc(t, title("a", 0, ""), title("b", 1, ""), title("c", 2, ""))
	if _, err := d.SetLevel(1, 0); err == nil {
		t.Fatalf("expected violation: c would be two levels below b")
	}
	if _, err := d.SetLevel(0, 1); err == nil {
		t.Fatalf("expected violation: first line must stay at level 0")
	}
	if _, err := d.SetLevel(2, 1); err != nil {
		t.Fatalf("SetLevel: %v", err)
	}
}

func TestSetMode_DescriptionNeedsPairing(t *testing.T) {
	d := mustDoc(t, title("a", 0, ""), title(DescriptionID("a"), 1, ""), title("c", 0, ""))
	d2, err := d.SetMode(1, ModeDescription)
	if err != nil {
		t.Fatalf("SetMode: %v", err)
	}
	if d2.PairedDescription(0) != 1 {
		t.Fatalf("expected index 1 to be paired with a")
	}
	if _, err := d.SetMode(2, ModeDescription); err == nil {
		t.Fatalf("expected violation for unpaired description")
	}
}

func TestNormalize_RepairsForeignInput(t *testing.T) {
	n := 0
	gen := func() string {
		n++
		return fmt.Sprintf("gen-%d", n)
	}
	got := Normalize([]Line{
		desc("x", 3, "orphan"),
		title("a", 5, "A"),
		{ID: "a", Mode: "weird", Level: 9},
	}, 4, gen)
	if err := Validate(got); err != nil {
		t.Fatalf("expected valid document, got %v", err)
	}
	if got[0].IsDescription() || got[0].Level != 0 {
		t.Fatalf("expected orphan description converted to level-0 title, got %#v", got[0])
	}
	if got[1].Level != 1 || got[2].Level != 2 {
		t.Fatalf("expected clamped levels 1,2 got %d,%d", got[1].Level, got[2].Level)
	}
	if len(Normalize(nil, 4, func() string { return "only" })) != 1 {
		t.Fatalf("expected a single line for empty input")
	}
}

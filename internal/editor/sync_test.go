package editor

import (
	"testing"

	"plan-cli/internal/outline"
)

func hostLines(ls ...outline.Line) []outline.Line {
	out := make([]outline.Line, len(ls))
	for i, l := range ls {
		out[i] = withRef(l)
	}
	return out
}

func TestSync_InsertsNewRecordsByNeighbour(t *testing.T) {
	e, rec := newTestEngine(t, hostLines(title("a", 0, "A"), title("b", 0, "B"))...)

	e.Sync(hostLines(title("a", 0, "A"), title("c", 0, "C"), title("b", 0, "B")))

	assertIDs(t, e, "a", "c", "b")
	if rec.commits != 0 {
		t.Fatalf("sync must not fire OnLinesChange")
	}
}

func TestSync_KeepsLocalContent(t *testing.T) {
	e, _ := newTestEngine(t, hostLines(title("a", 0, "A"), title("b", 0, "B"))...)
	e.InsertText("typed ")

	e.Sync(hostLines(title("a", 0, "stale"), title("b", 0, "B"), title("c", 0, "C")))

	if got := text(t, e, "a"); got != "typed A" {
		t.Fatalf("focused content clobbered: %q", got)
	}
	assertIDs(t, e, "a", "b", "c")
}

func TestSync_RemovesUnfocusedRecords(t *testing.T) {
	e, rec := newTestEngine(t, hostLines(title("a", 0, "A"), title("b", 0, "B"))...)

	e.Sync(hostLines(title("a", 0, "A")))

	assertIDs(t, e, "a")
	if len(rec.destroyed) != 1 || rec.destroyed[0] != "b" {
		t.Fatalf("destroyed = %v", rec.destroyed)
	}
}

func TestSync_KeepsUnsavedLines(t *testing.T) {
	e, _ := newTestEngine(t, withRef(title("a", 0, "A")), title("draft", 0, "new"))

	e.Sync(hostLines(title("a", 0, "A"), title("b", 0, "B")))

	assertIDs(t, e, "a", "b", "draft")
}

func TestSync_AdoptsDomainRef(t *testing.T) {
	e, _ := newTestEngine(t, title("a", 0, "A"))

	e.Sync(hostLines(title("a", 0, "A")))

	if l := e.FocusedLine(); l.DomainRef != "a" {
		t.Fatalf("domain ref = %q", l.DomainRef)
	}
}

func TestSync_DefersRemovalOfFocusedLine(t *testing.T) {
	e, _ := newTestEngine(t, hostLines(title("a", 0, "A"), title("b", 0, "B"))...)
	e.FocusLine("b", 0)

	e.Sync(hostLines(title("a", 0, "A")))
	assertIDs(t, e, "a", "b")

	e.FocusLine("a", 0)
	assertIDs(t, e, "a")
}

func TestSync_EditedFocusedLineSurvives(t *testing.T) {
	e, _ := newTestEngine(t, hostLines(title("a", 0, "A"), title("b", 0, "B"))...)
	e.FocusLine("b", 1)

	e.Sync(hostLines(title("a", 0, "A")))
	e.InsertText("!")
	e.FocusLine("a", 0)

	assertIDs(t, e, "a", "b")
	if got := text(t, e, "b"); got != "B!" {
		t.Fatalf("content = %q", got)
	}
}

func TestSync_PlacesNewDescriptionWithItsTitle(t *testing.T) {
	e, _ := newTestEngine(t, hostLines(title("a", 0, "A"))...)

	e.Sync(hostLines(title("a", 0, "A"), title("b", 0, "B"), desc("b", 1, "notes")))

	assertIDs(t, e, "a", "b", "b-desc")
	assertValid(t, e)
}

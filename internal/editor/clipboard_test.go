package editor

import "testing"

func TestPaste_SingleLineInline(t *testing.T) {
	e, _ := newTestEngine(t, title("a", 0, "AB"))
	e.FocusLine("a", 1)

	e.PasteText("x")

	if got := text(t, e, "a"); got != "AxB" {
		t.Fatalf("content = %q", got)
	}
	assertCursor(t, e, "a", 2)
}

func TestPaste_MultiLineAfterRun(t *testing.T) {
	e, _ := newTestEngine(t, title("a", 0, "A"), desc("a", 1, "d"), title("b", 0, "B"))

	e.PasteText("- one\n  - two\n")

	assertIDs(t, e, "a", "a-desc", "n1", "n2", "b")
	assertLevels(t, e, 0, 1, 0, 1, 0)
	assertCursor(t, e, "n2", 3)
	assertValid(t, e)
}

func TestPaste_RebasesLevels(t *testing.T) {
	e, _ := newTestEngine(t, title("a", 0, "A"), title("b", 1, "B"))
	e.FocusLine("b", 0)

	e.PasteText("    - deep\n      - deeper")

	assertLevels(t, e, 0, 1, 1, 2)
}

func TestPaste_ReplacesEmptyFocusedTitle(t *testing.T) {
	e, rec := newTestEngine(t, title("a", 0, ""))

	e.PasteText("one\ntwo")

	assertIDs(t, e, "n1", "n2")
	if len(rec.destroyed) != 1 || rec.destroyed[0] != "a" {
		t.Fatalf("destroyed = %v", rec.destroyed)
	}
}

func TestCopyPaste_UsesRichFormForOwnCopy(t *testing.T) {
	e, _ := newTestEngine(t, title("a", 0, "T"), desc("a", 1, "d"))

	p := e.Copy()
	if p.Rich == "" || p.Plain == "" {
		t.Fatalf("expected both forms, got %+v", p)
	}
	e.PasteText(p.Plain)

	assertIDs(t, e, "a", "a-desc", "n1", "n1-desc")
	l, _ := e.Document().Line("n1-desc")
	if !l.IsDescription() || l.Content.PlainText() != "d" {
		t.Fatalf("description lost: %+v", l)
	}
}

func TestCut_RemovesSelection(t *testing.T) {
	e, rec := newTestEngine(t, title("a", 0, "A"), title("b", 0, "B"))
	e.Click("b", 0, 0)
	e.Click("b", 0, ModCtrl)

	p := e.Cut()

	if p.Plain != "- B" {
		t.Fatalf("plain = %q", p.Plain)
	}
	assertIDs(t, e, "a")
	if rec.commits == 0 {
		t.Fatalf("cut should commit")
	}
}

func TestPaste_ClearsDomainRefs(t *testing.T) {
	e, _ := newTestEngine(t, withRef(title("x", 0, "X")), withRef(title("y", 0, "Y")))
	e.SelectAll()
	p := e.Copy()
	e.ClearSelection()

	e.Paste(p)

	assertIDs(t, e, "x", "n1", "n2", "y")
	for _, id := range []string{"n1", "n2"} {
		if l, _ := e.Document().Line(id); l.DomainRef != "" {
			t.Fatalf("pasted line kept domain ref: %+v", l)
		}
	}
}

package editor

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"plan-cli/internal/outline"
)

type recorder struct {
	commits   int
	last      []outline.Line
	focused   []string
	destroyed []string
	ready     []string
}

func (r *recorder) hooks() Hooks {
	return Hooks{
		OnLinesChange:   func(l []outline.Line) { r.commits++; r.last = l },
		OnLineFocus:     func(id string) { r.focused = append(r.focused, id) },
		OnEditorReady:   func(h *Handle) { r.ready = append(r.ready, h.LineID()) },
		OnEditorDestroy: func(id string) { r.destroyed = append(r.destroyed, id) },
	}
}

func counterIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("n%d", n)
	}
}

func newTestEngine(t *testing.T, lines ...outline.Line) (*Engine, *recorder) {
	t.Helper()
	rec := &recorder{}
	e := New(lines, Options{Hooks: rec.hooks(), NewID: counterIDs()})
	return e, rec
}

func title(id string, level int, text string) outline.Line {
	return outline.NewTitle(id, level, outline.Text(text))
}

func desc(titleID string, level int, text string) outline.Line {
	return outline.Line{ID: outline.DescriptionID(titleID), Level: level, Mode: outline.ModeDescription, Content: outline.Text(text)}
}

func withRef(l outline.Line) outline.Line {
	l.DomainRef = outline.TitleID(l.ID)
	return l
}

func assertIDs(t *testing.T, e *Engine, want ...string) {
	t.Helper()
	if diff := cmp.Diff(want, e.Document().IDs()); diff != "" {
		t.Fatalf("ids mismatch (-want +got):\n%s", diff)
	}
}

func assertLevels(t *testing.T, e *Engine, want ...int) {
	t.Helper()
	if diff := cmp.Diff(want, e.Document().Levels()); diff != "" {
		t.Fatalf("levels mismatch (-want +got):\n%s", diff)
	}
}

func assertCursor(t *testing.T, e *Engine, id string, off int) {
	t.Helper()
	if got := e.Cursor(); got != (Cursor{LineID: id, Offset: off}) {
		t.Fatalf("cursor = %+v, want {%s %d}", got, id, off)
	}
}

func text(t *testing.T, e *Engine, id string) string {
	t.Helper()
	l, ok := e.Document().Line(id)
	if !ok {
		t.Fatalf("line %s missing", id)
	}
	return l.Content.PlainText()
}

func assertValid(t *testing.T, e *Engine) {
	t.Helper()
	if err := outline.Validate(e.Lines()); err != nil {
		t.Fatalf("document invalid: %v", err)
	}
}

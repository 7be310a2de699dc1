package editor

import (
	"sort"

	"go.uber.org/zap"

	"plan-cli/internal/outline"
)

// selection is the multi-line selection. anchor is the origin of range
// selection (the last plainly clicked or toggled line).
type selection struct {
	ids    map[string]struct{}
	anchor string
}

func (s *selection) active() bool { return len(s.ids) > 0 }

func (s *selection) clear() { s.ids = nil }

func (s *selection) has(id string) bool {
	_, ok := s.ids[id]
	return ok
}

func (s *selection) toggle(id string) {
	if s.ids == nil {
		s.ids = map[string]struct{}{}
	}
	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
		return
	}
	s.ids[id] = struct{}{}
}

func (s *selection) setRange(doc outline.Document, a, b string) {
	i, j := doc.Index(a), doc.Index(b)
	if i < 0 || j < 0 {
		return
	}
	if i > j {
		i, j = j, i
	}
	s.ids = map[string]struct{}{}
	for k := i; k <= j; k++ {
		l, _ := doc.At(k)
		s.ids[l.ID] = struct{}{}
	}
}

// prune drops ids that are no longer in doc.
func (s *selection) prune(doc outline.Document) {
	for id := range s.ids {
		if doc.Index(id) < 0 {
			delete(s.ids, id)
		}
	}
	if s.anchor != "" && doc.Index(s.anchor) < 0 {
		s.anchor = ""
	}
}

func (s *selection) indices(doc outline.Document) []int {
	out := make([]int, 0, len(s.ids))
	for id := range s.ids {
		if i := doc.Index(id); i >= 0 {
			out = append(out, i)
		}
	}
	sort.Ints(out)
	return out
}

// Selection returns the selected line ids in document order.
func (e *Engine) Selection() []string {
	idx := e.sel.indices(e.doc)
	out := make([]string, len(idx))
	for k, i := range idx {
		l, _ := e.doc.At(i)
		out[k] = l.ID
	}
	return out
}

func (e *Engine) IsSelected(lineID string) bool { return e.sel.has(lineID) }

func (e *Engine) HasSelection() bool { return e.sel.active() }

// Click handles a pointer press on a line. Shift extends a range from the
// anchor, Ctrl/Meta toggles the line, a plain click clears the selection.
func (e *Engine) Click(lineID string, offset int, mods Modifiers) bool {
	if e.doc.Index(lineID) < 0 {
		e.log.Debug("click on unknown line", zap.Error(FocusResolutionFailure{LineID: lineID}))
		return false
	}
	switch {
	case mods.Has(ModShift):
		anchor := e.sel.anchor
		if anchor == "" {
			anchor = e.cursor.LineID
		}
		e.sel.setRange(e.doc, anchor, lineID)
		e.sel.anchor = anchor
	case mods.Has(ModCtrl) || mods.Has(ModMeta):
		e.sel.toggle(lineID)
		e.sel.anchor = lineID
	default:
		e.sel.clear()
		e.sel.anchor = lineID
	}
	e.moveFocus(lineID, offset)
	return true
}

func (e *Engine) ClearSelection() {
	e.sel.clear()
	e.sel.anchor = e.cursor.LineID
}

func (e *Engine) SelectAll() {
	first, _ := e.doc.At(0)
	last, _ := e.doc.At(e.doc.Len() - 1)
	e.sel.setRange(e.doc, first.ID, last.ID)
	e.sel.anchor = first.ID
}

// extend grows or shrinks the range selection by one line in dir and moves
// focus with its head.
func (e *Engine) extend(dir int) bool {
	i := e.curIdx()
	cur, _ := e.doc.At(i)
	if !e.sel.active() || e.sel.anchor == "" {
		e.sel.anchor = cur.ID
	}
	j := clamp(i+dir, 0, e.doc.Len()-1)
	head, _ := e.doc.At(j)
	e.sel.setRange(e.doc, e.sel.anchor, head.ID)
	if j != i {
		off := 0
		if dir < 0 {
			off = head.Content.Len()
		}
		e.moveFocus(head.ID, off)
	}
	return true
}

// targets are the lines a block operation applies to: the selection when
// one is active, otherwise the focused line.
func (e *Engine) targets() []int {
	if e.sel.active() {
		return e.sel.indices(e.doc)
	}
	return []int{e.curIdx()}
}

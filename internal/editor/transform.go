package editor

import (
	"sort"

	"plan-cli/internal/outline"
)

// enter on a title opens a sibling after the title's run. A cursor strictly
// inside the text splits it and carries the tail along. On a description it
// inserts a soft break.
func (e *Engine) enter() bool {
	i := e.curIdx()
	cur, _ := e.doc.At(i)
	if cur.IsDescription() {
		return e.insertText("\n")
	}
	off := e.cursor.Offset
	var tail outline.Content
	next := e.doc
	if off > 0 && off < cur.Content.Len() {
		var head outline.Content
		head, tail = cur.Content.Split(off)
		next, _ = next.ReplaceContent(i, head)
	}
	l := outline.NewTitle(e.newID(), cur.Level, tail)
	next, err := next.InsertAt(e.doc.RunEnd(i)+1, l)
	return e.structural("enter", next, err, Cursor{LineID: l.ID})
}

func (e *Engine) shiftEnter() bool {
	i := e.curIdx()
	cur, _ := e.doc.At(i)
	if cur.IsTitle() {
		if j := e.doc.PairedDescription(i); j >= 0 {
			d, _ := e.doc.At(j)
			e.moveFocus(d.ID, d.Content.Len())
			return true
		}
		d := outline.Line{
			ID:        outline.DescriptionID(cur.ID),
			Level:     min(cur.Level+1, e.maxLevel),
			Mode:      outline.ModeDescription,
			DomainRef: cur.DomainRef,
		}
		next, err := e.doc.InsertAt(i+1, d)
		return e.structural("add-description", next, err, Cursor{LineID: d.ID})
	}

	t, _ := e.doc.At(e.doc.PairedTitle(i))
	if cur.Content.IsEmpty() {
		next, err := e.doc.RemoveAt(i)
		return e.structural("drop-description", next, err, Cursor{LineID: t.ID, Offset: t.Content.Len()})
	}
	next, id, err := e.promoteDescription(i, t.Level)
	return e.structural("promote-description", next, err, Cursor{LineID: id, Offset: cur.Content.Len()})
}

// promoteDescription turns the description at i into a title of its own at
// level. The new title gets a fresh id since the old one encodes the pairing.
func (e *Engine) promoteDescription(i, level int) (outline.Document, string, error) {
	d, _ := e.doc.At(i)
	next, err := e.doc.RemoveAt(i)
	if err != nil {
		return e.doc, "", err
	}
	l := outline.NewTitle(e.newID(), level, d.Content)
	next, err = next.InsertAt(i, l)
	return next, l.ID, err
}

func (e *Engine) indent() bool {
	levels := e.doc.Levels()
	changed := false
	for _, i := range e.targets() {
		want := levels[i] + 1
		if i == 0 {
			want = 0
		} else if p := levels[i-1] + 1; p < want {
			want = p
		}
		want = min(want, e.maxLevel)
		if want > levels[i] {
			levels[i] = want
			changed = true
		}
	}
	if !changed {
		return true
	}
	next, err := e.doc.SetLevels(levels)
	return e.structural("indent", next, err, e.cursor)
}

// outdent moves each target and its subtree one level up. A focused
// description already at level 0 becomes a title instead.
func (e *Engine) outdent() bool {
	targets := e.targets()
	if len(targets) == 1 && !e.sel.active() {
		i := targets[0]
		if l, _ := e.doc.At(i); l.IsDescription() && l.Level == 0 {
			next, id, err := e.promoteDescription(i, 0)
			return e.structural("promote-description", next, err, Cursor{LineID: id, Offset: e.cursor.Offset})
		}
	}

	levels := e.doc.Levels()
	marked := make([]bool, len(levels))
	for _, i := range targets {
		if levels[i] == 0 {
			continue
		}
		marked[i] = true
		for j := i + 1; j < len(levels) && levels[j] > levels[i]; j++ {
			marked[j] = true
		}
	}
	changed := false
	for j := range levels {
		if marked[j] && levels[j] > 0 {
			levels[j]--
			changed = true
		}
	}
	if !changed {
		return true
	}
	next, err := e.doc.SetLevels(levels)
	return e.structural("outdent", next, err, e.cursor)
}

func (e *Engine) backspace() bool {
	i := e.curIdx()
	cur, _ := e.doc.At(i)
	if off := e.cursor.Offset; off > 0 {
		e.editContent(i, cur.Content.Delete(off-1, off))
		e.cursor.Offset = off - 1
		return true
	}

	if cur.IsDescription() {
		t, _ := e.doc.At(e.doc.PairedTitle(i))
		target := Cursor{LineID: t.ID, Offset: t.Content.Len()}
		if !cur.Content.IsEmpty() {
			e.moveFocus(target.LineID, target.Offset)
			return true
		}
		next, err := e.doc.RemoveAt(i)
		return e.structural("drop-description", next, err, target)
	}

	j := e.doc.PairedDescription(i)
	if cur.Content.IsEmpty() {
		switch {
		case j >= 0:
			d, _ := e.doc.At(j)
			next, _ := e.doc.ReplaceContent(i, d.Content)
			next, err := next.RemoveAt(j)
			return e.structural("promote-description", next, err, Cursor{LineID: cur.ID})
		case e.doc.Len() == 1:
			return true
		}
		next, err := e.doc.RemoveAt(i)
		if i == 0 {
			first, _ := next.At(0)
			return e.structural("remove-line", next, err, Cursor{LineID: first.ID})
		}
		prev, _ := next.At(i - 1)
		return e.structural("remove-line", next, err, Cursor{LineID: prev.ID, Offset: prev.Content.Len()})
	}

	if i == 0 || j >= 0 {
		return true
	}
	return e.mergeInto(i-1, i, "merge-up")
}

func (e *Engine) deleteForward() bool {
	i := e.curIdx()
	cur, _ := e.doc.At(i)
	if off := e.cursor.Offset; off < cur.Content.Len() {
		e.editContent(i, cur.Content.Delete(off, off+1))
		return true
	}
	nxt, ok := e.doc.At(i + 1)
	if !ok || nxt.IsDescription() || e.doc.PairedDescription(i+1) >= 0 {
		return true
	}
	return e.mergeInto(i, i+1, "merge-down")
}

// mergeInto appends the content of line src to line dst and removes src.
// Focus lands at the join.
func (e *Engine) mergeInto(dst, src int, op string) bool {
	a, _ := e.doc.At(dst)
	b, _ := e.doc.At(src)
	next, _ := e.doc.ReplaceContent(dst, a.Content.Concat(b.Content))
	next, err := next.RemoveAt(src)
	return e.structural(op, next, err, Cursor{LineID: a.ID, Offset: a.Content.Len()})
}

// vertical moves to the adjacent line: end of the previous line going up,
// start of the next going down. At the edges the cursor goes to the start or
// end of the current line.
func (e *Engine) vertical(dir int) bool {
	i := e.curIdx()
	l, ok := e.doc.At(i + dir)
	if !ok {
		if dir < 0 {
			e.setOffset(0)
		} else {
			e.setOffset(e.FocusedLine().Content.Len())
		}
		return true
	}
	off := 0
	if dir < 0 {
		off = l.Content.Len()
	}
	e.moveFocus(l.ID, off)
	return true
}

func (e *Engine) left() bool {
	if e.cursor.Offset > 0 {
		e.cursor.Offset--
		return true
	}
	if prev, ok := e.doc.At(e.curIdx() - 1); ok {
		e.moveFocus(prev.ID, prev.Content.Len())
	}
	return true
}

func (e *Engine) right() bool {
	if e.cursor.Offset < e.FocusedLine().Content.Len() {
		e.cursor.Offset++
		return true
	}
	if nxt, ok := e.doc.At(e.curIdx() + 1); ok {
		e.moveFocus(nxt.ID, 0)
	}
	return true
}

// deleteSelection removes every selected line together with its paired
// description.
func (e *Engine) deleteSelection() bool {
	idx := e.sel.indices(e.doc)
	if len(idx) == 0 {
		return false
	}
	next, first, err := e.removeLines(e.doc, idx)
	if !e.structural("delete-selection", next, err, focusAfterRemoval(next, first)) {
		return false
	}
	e.ClearSelection()
	return true
}

// removeLines deletes the lines at idx plus the descriptions paired with any
// titles among them, and reports the lowest removed index. Removing every
// line leaves one fresh empty title.
func (e *Engine) removeLines(doc outline.Document, idx []int) (outline.Document, int, error) {
	set := map[int]struct{}{}
	for _, i := range idx {
		set[i] = struct{}{}
		if j := doc.PairedDescription(i); j >= 0 {
			set[j] = struct{}{}
		}
	}
	all := make([]int, 0, len(set))
	for i := range set {
		all = append(all, i)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(all)))
	if len(all) == 0 {
		return doc, 0, nil
	}
	first := all[len(all)-1]
	if len(all) == doc.Len() {
		return outline.Single(e.newID()), 0, nil
	}
	next := doc
	for _, i := range all {
		var err error
		if next, err = next.RemoveAt(i); err != nil {
			return doc, first, err
		}
	}
	return next, first, nil
}

// focusAfterRemoval picks the end of the line before the removed block, or
// the start of the new first line.
func focusAfterRemoval(next outline.Document, first int) Cursor {
	if first == 0 {
		l, _ := next.At(0)
		return Cursor{LineID: l.ID}
	}
	l, _ := next.At(first - 1)
	return Cursor{LineID: l.ID, Offset: l.Content.Len()}
}

package editor

import (
	"fmt"

	"go.uber.org/zap"

	"plan-cli/internal/outline"
)

// Cursor addresses a position inside a line. Offsets count runes, with every
// inline token counting as one position.
type Cursor struct {
	LineID string
	Offset int
}

// FocusResolutionFailure is logged when a focus target no longer exists and
// the nearest surviving line is used instead.
type FocusResolutionFailure struct {
	LineID string
}

func (e FocusResolutionFailure) Error() string {
	return fmt.Sprintf("focus target not found: %s", e.LineID)
}

// Scheduler defers focus delivery until the view can place a cursor.
type Scheduler interface {
	Defer(fn func())
}

type SchedulerFunc func(fn func())

func (f SchedulerFunc) Defer(fn func()) { f(fn) }

// Immediate runs deferred work synchronously.
var Immediate Scheduler = SchedulerFunc(func(fn func()) { fn() })

// Queue holds deferred work until the host drains it on its next tick.
type Queue struct {
	pending []func()
}

func (q *Queue) Defer(fn func()) { q.pending = append(q.pending, fn) }

func (q *Queue) Len() int { return len(q.pending) }

// Drain runs queued work in order and reports how many calls ran.
func (q *Queue) Drain() int {
	n := 0
	for len(q.pending) > 0 {
		fns := q.pending
		q.pending = nil
		for _, fn := range fns {
			fn()
			n++
		}
	}
	return n
}

type resolved struct {
	Cursor
	index int
	ok    bool
}

// resolve maps c onto the current document. A missing line falls back to the
// end of the line nearest to where the cursor was last seen.
func (e *Engine) resolve(c Cursor) resolved {
	if i := e.doc.Index(c.LineID); i >= 0 {
		l, _ := e.doc.At(i)
		return resolved{Cursor: Cursor{LineID: c.LineID, Offset: clamp(c.Offset, 0, l.Content.Len())}, index: i, ok: true}
	}
	i := clamp(e.hint, 0, e.doc.Len()-1)
	l, _ := e.doc.At(i)
	return resolved{Cursor: Cursor{LineID: l.ID, Offset: l.Content.Len()}, index: i}
}

// focus points the cursor at (id, off) and schedules delivery to the view.
func (e *Engine) focus(id string, off int) {
	prev := e.cursor.LineID
	r := e.resolve(Cursor{LineID: id, Offset: off})
	if !r.ok {
		e.log.Debug("focus fallback", zap.Error(FocusResolutionFailure{LineID: id}), zap.String("line", r.LineID))
	}
	e.cursor, e.hint = r.Cursor, r.index
	if e.cursor.LineID != prev {
		e.typing = outline.Marks{}
		e.settleDeferred()
	}
	target := e.cursor.LineID
	e.sched.Defer(func() { e.deliverFocus(target) })
}

// moveFocus is focus for navigation: leaving a dirty line commits it.
func (e *Engine) moveFocus(id string, off int) {
	if id != e.cursor.LineID && e.dirty {
		e.commit()
	}
	e.focus(id, off)
}

func (e *Engine) setOffset(off int) {
	l := e.FocusedLine()
	e.cursor.Offset = clamp(off, 0, l.Content.Len())
}

func (e *Engine) deliverFocus(target string) {
	if e.doc.Index(target) < 0 {
		e.log.Debug("deferred focus fallback", zap.Error(FocusResolutionFailure{LineID: target}))
	}
	r := e.resolve(e.cursor)
	e.cursor, e.hint = r.Cursor, r.index
	if r.LineID == e.reported {
		return
	}
	e.reported = r.LineID
	if e.hooks.OnLineFocus != nil {
		e.hooks.OnLineFocus(r.LineID)
	}
}

// FocusLine moves focus programmatically. It reports false when the line
// does not exist.
func (e *Engine) FocusLine(lineID string, offset int) bool {
	if e.doc.Index(lineID) < 0 {
		e.log.Debug("programmatic focus ignored", zap.Error(FocusResolutionFailure{LineID: lineID}))
		return false
	}
	e.moveFocus(lineID, offset)
	return true
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

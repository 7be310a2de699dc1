package projection

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"plan-cli/internal/model"
	"plan-cli/internal/outline"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeSink struct {
	mu      sync.Mutex
	batches []model.Changes
	err     error
	applied chan struct{}
}

func newFakeSink() *fakeSink { return &fakeSink{applied: make(chan struct{}, 16)} }

func (s *fakeSink) Apply(_ context.Context, ch model.Changes) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.batches = append(s.batches, ch)
	s.applied <- struct{}{}
	return nil
}

func (s *fakeSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.batches)
}

func line(id, text string) outline.Line { return outline.NewTitle(id, 0, outline.Text(text)) }

func TestAutosaver_CoalescesBursts(t *testing.T) {
	sink := newFakeSink()
	a := NewAutosaver(AutosaverOpts{Sink: sink, Debounce: 20 * time.Millisecond})

	a.Notify([]outline.Line{line("a", "o")})
	a.Notify([]outline.Line{line("a", "on")})
	a.Notify([]outline.Line{line("a", "one")})

	select {
	case <-sink.applied:
	case <-time.After(2 * time.Second):
		t.Fatalf("autosave never ran")
	}
	if err := a.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if sink.count() != 1 {
		t.Fatalf("expected one batch, got %d", sink.count())
	}
	if got := sink.batches[0].Upserts[0].Title; got != "one" {
		t.Fatalf("saved %q", got)
	}
}

func TestAutosaver_FlushWritesDeletes(t *testing.T) {
	sink := newFakeSink()
	a := NewAutosaver(AutosaverOpts{Sink: sink, Debounce: time.Hour})
	a.SetBaseline([]model.PlanItem{{ID: "a", Title: "A"}, {ID: "b", Title: "B", Position: 1}})

	a.Notify([]outline.Line{{ID: "a", Mode: outline.ModeTitle, Content: outline.Text("A"), DomainRef: "a"}})
	if err := a.Flush(context.Background()); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	if sink.count() != 1 {
		t.Fatalf("expected one batch, got %d", sink.count())
	}
	ch := sink.batches[0]
	if len(ch.Upserts) != 0 || len(ch.Deletes) != 1 || ch.Deletes[0] != "b" {
		t.Fatalf("unexpected batch %+v", ch)
	}
	if err := a.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if sink.count() != 1 {
		t.Fatalf("close should have nothing left to save")
	}
}

func TestAutosaver_ReportsErrors(t *testing.T) {
	sink := newFakeSink()
	sink.err = errors.New("disk full")
	errs := make(chan error, 1)
	a := NewAutosaver(AutosaverOpts{Sink: sink, Debounce: 5 * time.Millisecond, OnError: func(err error) { errs <- err }})

	a.Notify([]outline.Line{line("a", "x")})

	select {
	case err := <-errs:
		if err.Error() != "disk full" {
			t.Fatalf("unexpected error %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("error was not reported")
	}
	if err := a.Close(context.Background()); err == nil {
		t.Fatalf("expected close to retry and fail")
	}
}

func (s *fakeSink) setErr(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

func TestAutosaver_FailedFlushIsRetriedOnClose(t *testing.T) {
	sink := newFakeSink()
	a := NewAutosaver(AutosaverOpts{Sink: sink, Debounce: time.Hour})

	a.Notify([]outline.Line{line("a", "last edit")})
	sink.setErr(errors.New("database is locked"))
	if err := a.Flush(context.Background()); err == nil {
		t.Fatalf("expected flush to fail")
	}

	sink.setErr(nil)
	if err := a.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if sink.count() != 1 {
		t.Fatalf("expected the failed batch to be written on close, got %d batches", sink.count())
	}
	if got := sink.batches[0].Upserts[0].Title; got != "last edit" {
		t.Fatalf("saved %q", got)
	}
}

func TestAutosaver_FailedFlushKeepsNewerNotify(t *testing.T) {
	sink := newFakeSink()
	a := NewAutosaver(AutosaverOpts{Sink: sink, Debounce: time.Hour})

	a.Notify([]outline.Line{line("a", "old")})
	sink.setErr(errors.New("database is locked"))
	if err := a.Flush(context.Background()); err == nil {
		t.Fatalf("expected flush to fail")
	}
	sink.setErr(nil)
	a.Notify([]outline.Line{line("a", "new")})

	if err := a.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if sink.count() != 1 || sink.batches[0].Upserts[0].Title != "new" {
		t.Fatalf("expected only the newest snapshot, got %+v", sink.batches)
	}
}

func TestAutosaver_OlderSnapshotNeverOverwritesNewer(t *testing.T) {
	sink := newFakeSink()
	a := NewAutosaver(AutosaverOpts{Sink: sink, Debounce: time.Hour})
	ctx := context.Background()

	// A timer save that lost the race for the sink to a later Flush.
	if err := a.save(ctx, []outline.Line{line("a", "L3")}, 3); err != nil {
		t.Fatalf("save L3: %v", err)
	}
	if err := a.save(ctx, []outline.Line{line("a", "L2")}, 2); err != nil {
		t.Fatalf("save L2: %v", err)
	}

	if sink.count() != 1 {
		t.Fatalf("expected the stale snapshot to be skipped, got %d batches", sink.count())
	}
	known := a.Known()
	if len(known) != 1 || known[0].Title != "L3" {
		t.Fatalf("known state regressed: %+v", known)
	}
	if err := a.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

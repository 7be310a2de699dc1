package projection

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"plan-cli/internal/model"
	"plan-cli/internal/outline"
)

const DefaultDebounce = 750 * time.Millisecond

// Sink receives the batches an Autosaver produces.
type Sink interface {
	Apply(ctx context.Context, ch model.Changes) error
}

type AutosaverOpts struct {
	Sink     Sink
	Debounce time.Duration
	Logger   *zap.Logger
	// OnError is called from the save goroutine when a batch fails.
	OnError func(error)
	Now     func() time.Time
}

// Autosaver persists committed lines in the background. Bursts of Notify
// calls are coalesced into one save after the debounce period, and at most
// one save runs at a time. Notify never blocks on I/O.
type Autosaver struct {
	sink     Sink
	debounce time.Duration
	log      *zap.Logger
	onError  func(error)
	now      func() time.Time

	mu      sync.Mutex
	timer   *time.Timer
	pending []outline.Line
	dirty   bool
	gen     int
	running bool
	closed  bool
	wg      sync.WaitGroup

	saveMu sync.Mutex
	known  map[string]model.PlanItem
	// saved is the generation of the newest snapshot written to the sink.
	saved int
}

func NewAutosaver(opts AutosaverOpts) *Autosaver {
	a := &Autosaver{
		sink:     opts.Sink,
		debounce: opts.Debounce,
		log:      opts.Logger,
		onError:  opts.OnError,
		now:      opts.Now,
		known:    map[string]model.PlanItem{},
	}
	if a.debounce <= 0 {
		a.debounce = DefaultDebounce
	}
	if a.log == nil {
		a.log = zap.NewNop()
	}
	if a.now == nil {
		a.now = time.Now
	}
	return a
}

// SetBaseline records what the sink already holds, so the first save only
// writes differences.
func (a *Autosaver) SetBaseline(items []model.PlanItem) {
	a.saveMu.Lock()
	a.known = Index(items)
	a.saveMu.Unlock()
}

// Known returns the items as last saved.
func (a *Autosaver) Known() []model.PlanItem {
	a.saveMu.Lock()
	defer a.saveMu.Unlock()
	out := make([]model.PlanItem, 0, len(a.known))
	for _, it := range a.known {
		out = append(out, it)
	}
	model.SortByPosition(out)
	return out
}

// Notify schedules a save of lines.
func (a *Autosaver) Notify(lines []outline.Line) {
	if a == nil {
		return
	}
	snap := make([]outline.Line, len(lines))
	for i := range lines {
		snap[i] = lines[i].Clone()
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}
	a.pending = snap
	a.dirty = true
	a.gen++
	if a.timer == nil {
		a.timer = time.AfterFunc(a.debounce, a.onTimer)
		return
	}
	a.timer.Reset(a.debounce)
}

func (a *Autosaver) onTimer() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	if a.running {
		a.timer.Reset(a.debounce)
		a.mu.Unlock()
		return
	}
	if !a.dirty {
		a.mu.Unlock()
		return
	}
	lines, gen := a.pending, a.gen
	a.dirty = false
	a.running = true
	a.wg.Add(1)
	a.mu.Unlock()
	defer a.wg.Done()

	err := a.save(context.Background(), lines, gen)
	if err != nil {
		a.report(err)
	}

	a.mu.Lock()
	a.running = false
	if err != nil {
		a.keep(gen)
	}
	if a.gen != gen && !a.closed {
		a.timer.Reset(a.debounce)
	}
	a.mu.Unlock()
}

// keep marks the snapshot of gen as unsaved again so the next Flush or Close
// retries it. A newer Notify already left its own snapshot dirty. Callers
// hold mu.
func (a *Autosaver) keep(gen int) {
	if a.gen == gen {
		a.dirty = true
	}
}

// Flush saves pending lines now, bypassing the debounce.
func (a *Autosaver) Flush(ctx context.Context) error {
	a.mu.Lock()
	if a.timer != nil {
		a.timer.Stop()
	}
	a.mu.Unlock()
	return a.savePending(ctx)
}

// savePending writes the current snapshot, restoring it as dirty on failure.
func (a *Autosaver) savePending(ctx context.Context) error {
	a.mu.Lock()
	lines, gen, dirty := a.pending, a.gen, a.dirty
	a.dirty = false
	a.mu.Unlock()
	if !dirty {
		return nil
	}
	err := a.save(ctx, lines, gen)
	if err != nil {
		a.mu.Lock()
		a.keep(gen)
		a.mu.Unlock()
	}
	return err
}

// Close stops the timer, waits for a running save and then flushes what is
// left. The Autosaver drops Notify calls afterwards.
func (a *Autosaver) Close(ctx context.Context) error {
	a.mu.Lock()
	a.closed = true
	if a.timer != nil {
		a.timer.Stop()
	}
	a.mu.Unlock()
	a.wg.Wait()
	return a.savePending(ctx)
}

// save writes the snapshot taken at gen. A snapshot older than one already
// written is skipped so a slow timer save never overwrites a newer Flush.
func (a *Autosaver) save(ctx context.Context, lines []outline.Line, gen int) error {
	a.saveMu.Lock()
	defer a.saveMu.Unlock()

	if gen <= a.saved {
		a.log.Debug("stale autosave skipped", zap.Int("gen", gen), zap.Int("saved", a.saved))
		return nil
	}
	items := Derive(lines, a.known, a.now())
	ch := Diff(a.known, items)
	if ch.Empty() {
		a.saved = gen
		return nil
	}
	if err := a.sink.Apply(ctx, ch); err != nil {
		return err
	}
	a.known = Index(items)
	a.saved = gen
	a.log.Debug("autosaved",
		zap.Int("upserts", len(ch.Upserts)),
		zap.Int("deletes", len(ch.Deletes)))
	return nil
}

func (a *Autosaver) report(err error) {
	a.log.Warn("autosave failed", zap.Error(err))
	if a.onError != nil {
		a.onError(err)
	}
}

// Package editor is the outline editing engine: it turns key intents, clicks
// and clipboard payloads into document mutations and keeps focus and
// selection valid across them.
//
// The engine is single-threaded. Every method must be called from the
// host's input goroutine; none of them block.
package editor

import (
	"go.uber.org/zap"

	"plan-cli/internal/clipboard"
	"plan-cli/internal/inline"
	"plan-cli/internal/outline"
)

const DefaultMaxLevel = 4

// Hooks are the outbound notifications a host can subscribe to.
type Hooks struct {
	// OnLinesChange fires after every committed mutation.
	OnLinesChange func(lines []outline.Line)
	// OnLineFocus fires when the focused line changes.
	OnLineFocus func(lineID string)
	// OnEditorReady fires when a line comes into existence.
	OnEditorReady func(h *Handle)
	// OnEditorDestroy fires when a line is removed.
	OnEditorDestroy func(lineID string)
}

type Options struct {
	// MaxLevel caps indentation; <= 0 uses DefaultMaxLevel.
	MaxLevel    int
	IndentWidth int
	Tokens      *inline.Registry
	Logger      *zap.Logger
	Hooks       Hooks
	// Scheduler runs focus delivery after the view had a chance to
	// materialize new lines. Nil delivers immediately.
	Scheduler Scheduler
	NewID     func() string
}

type Engine struct {
	doc      outline.Document
	cursor   Cursor
	hint     int
	reported string

	sel    selection
	typing outline.Marks
	dirty  bool

	maxLevel int
	tokens   *inline.Registry
	codec    *clipboard.Codec
	lastCopy *clipboard.Payload

	hooks    Hooks
	sched    Scheduler
	log      *zap.Logger
	newID    func() string
	handles  *Registry
	deferred map[string]bool
}

// New builds an engine over lines. Foreign input is normalized first, so New
// never fails; an empty input yields a single empty title.
func New(lines []outline.Line, opts Options) *Engine {
	e := &Engine{
		maxLevel: opts.MaxLevel,
		tokens:   opts.Tokens,
		codec:    clipboard.NewCodec(opts.IndentWidth),
		hooks:    opts.Hooks,
		sched:    opts.Scheduler,
		log:      opts.Logger,
		newID:    opts.NewID,
		handles:  newRegistry(),
		deferred: map[string]bool{},
	}
	if e.maxLevel <= 0 {
		e.maxLevel = DefaultMaxLevel
	}
	if e.tokens == nil {
		e.tokens = inline.NewRegistry(nil)
	}
	if e.sched == nil {
		e.sched = Immediate
	}
	if e.log == nil {
		e.log = zap.NewNop()
	}
	if e.newID == nil {
		e.newID = outline.NewID
	}

	e.doc = e.ingest(lines)
	for _, id := range e.doc.IDs() {
		e.register(id)
	}
	first, _ := e.doc.At(0)
	e.focus(first.ID, 0)
	return e
}

func (e *Engine) ingest(lines []outline.Line) outline.Document {
	norm := outline.Normalize(lines, e.maxLevel, e.newID)
	for i := range norm {
		norm[i].Content = e.tokens.ResolveContent(norm[i].Content)
	}
	doc, err := outline.NewDocument(norm)
	if err != nil {
		// Normalize guarantees validity; keep the editor usable regardless.
		e.log.Error("normalized lines rejected", zap.Error(err))
		return outline.Single(e.newID())
	}
	return doc
}

func (e *Engine) Document() outline.Document { return e.doc }
func (e *Engine) Lines() []outline.Line      { return e.doc.Lines() }
func (e *Engine) Cursor() Cursor             { return e.cursor }
func (e *Engine) MaxLevel() int              { return e.maxLevel }
func (e *Engine) Tokens() *inline.Registry   { return e.tokens }
func (e *Engine) Codec() *clipboard.Codec    { return e.codec }

// Dirty reports whether the focused line has edits not yet committed.
func (e *Engine) Dirty() bool { return e.dirty }

// FocusedLine returns the line holding the cursor.
func (e *Engine) FocusedLine() outline.Line {
	l, _ := e.doc.At(e.curIdx())
	return l
}

func (e *Engine) curIdx() int {
	if i := e.doc.Index(e.cursor.LineID); i >= 0 {
		return i
	}
	return e.resolve(e.cursor).index
}

// Commit publishes pending content edits of the focused line.
func (e *Engine) Commit() {
	if e.dirty {
		e.commit()
	}
}

func (e *Engine) commit() {
	e.dirty = false
	if e.hooks.OnLinesChange != nil {
		e.hooks.OnLinesChange(e.doc.Lines())
	}
}

// structural installs next, moves focus to target and commits. A rejected
// edit is logged and leaves the engine untouched.
func (e *Engine) structural(op string, next outline.Document, err error, target Cursor) bool {
	if err != nil {
		e.log.Debug("structural edit rejected",
			zap.String("op", op),
			zap.String("line", e.cursor.LineID),
			zap.Error(err))
		return false
	}
	e.replaceDoc(next)
	e.focus(target.LineID, target.Offset)
	e.commit()
	return true
}

// replaceDoc installs next and keeps the handle registry and selection in
// step with the new id set.
func (e *Engine) replaceDoc(next outline.Document) {
	before := map[string]struct{}{}
	for _, id := range e.doc.IDs() {
		before[id] = struct{}{}
	}
	after := map[string]struct{}{}
	for _, id := range next.IDs() {
		after[id] = struct{}{}
	}
	e.doc = next
	for id := range before {
		if _, ok := after[id]; !ok {
			e.unregister(id)
			delete(e.deferred, id)
		}
	}
	for _, id := range next.IDs() {
		if _, ok := before[id]; !ok {
			e.register(id)
		}
	}
	e.sel.prune(next)
}

func (e *Engine) register(id string) {
	h := e.handles.register(id, e)
	if e.hooks.OnEditorReady != nil {
		e.hooks.OnEditorReady(h)
	}
}

func (e *Engine) unregister(id string) {
	if !e.handles.unregister(id) {
		return
	}
	if e.hooks.OnEditorDestroy != nil {
		e.hooks.OnEditorDestroy(id)
	}
}

// Handle returns the lifecycle handle of a live line.
func (e *Engine) Handle(lineID string) (*Handle, bool) { return e.handles.get(lineID) }

// AppendEmptyLine adds an empty level-0 title at the end and focuses it.
func (e *Engine) AppendEmptyLine() bool {
	l := outline.NewTitle(e.newID(), 0, nil)
	next, err := e.doc.InsertAt(e.doc.Len(), l)
	return e.structural("append", next, err, Cursor{LineID: l.ID})
}

// RemoveLine deletes a line on behalf of the host. Removing a title also
// removes its description.
func (e *Engine) RemoveLine(lineID string) bool {
	i := e.doc.Index(lineID)
	if i < 0 {
		e.log.Debug("remove of unknown line", zap.String("line", lineID))
		return false
	}
	idx := []int{i}
	if j := e.doc.PairedDescription(i); j >= 0 {
		idx = append(idx, j)
	}
	next, first, err := e.removeLines(e.doc, idx)
	target := e.cursor
	if c := e.doc.Index(e.cursor.LineID); c >= idx[0] && c <= idx[len(idx)-1] {
		target = focusAfterRemoval(next, first)
	}
	return e.structural("remove-line", next, err, target)
}

package editor

import "plan-cli/internal/outline"

// Handle is the host's imperative grip on one live line. It becomes inert
// once the line is destroyed.
type Handle struct {
	lineID string
	e      *Engine
}

func (h *Handle) LineID() string { return h.lineID }

func (h *Handle) Alive() bool {
	if h == nil || h.e == nil {
		return false
	}
	// Ids can come back (descriptions derive theirs from the title), so only
	// the handle currently registered for the id is alive.
	cur, ok := h.e.handles.get(h.lineID)
	return ok && cur == h
}

func (h *Handle) Line() (outline.Line, bool) {
	if !h.Alive() {
		return outline.Line{}, false
	}
	return h.e.doc.Line(h.lineID)
}

// Focus places the cursor in this line.
func (h *Handle) Focus(offset int) bool {
	if !h.Alive() {
		return false
	}
	return h.e.FocusLine(h.lineID, offset)
}

// Registry tracks handles for the lines of one engine. Entries are added and
// removed as lines are created and destroyed, independent of any view.
type Registry struct {
	handles map[string]*Handle
}

func newRegistry() *Registry { return &Registry{handles: map[string]*Handle{}} }

func (r *Registry) register(id string, e *Engine) *Handle {
	if h, ok := r.handles[id]; ok {
		return h
	}
	h := &Handle{lineID: id, e: e}
	r.handles[id] = h
	return h
}

func (r *Registry) unregister(id string) bool {
	if _, ok := r.handles[id]; !ok {
		return false
	}
	delete(r.handles, id)
	return true
}

func (r *Registry) get(id string) (*Handle, bool) {
	h, ok := r.handles[id]
	return h, ok
}

func (r *Registry) Len() int { return len(r.handles) }

// Handles exposes the lifecycle registry, mostly for diagnostics.
func (e *Engine) Handles() *Registry { return e.handles }

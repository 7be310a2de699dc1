package editor

import (
	"fmt"

	"go.uber.org/zap"

	"plan-cli/internal/outline"
)

// HostSyncConflict is logged when an inbound replace would remove a line of
// the focused run. The removal is held back until focus leaves the run.
type HostSyncConflict struct {
	LineID string
}

func (e HostSyncConflict) Error() string {
	return fmt.Sprintf("host sync conflict on focused line %s", e.LineID)
}

// Sync merges an external line list into the document. Only the id set is
// compared: lines the host added are inserted next to their neighbours and
// lines the host dropped are removed. Content of lines that survive is never
// overwritten, and the focused run is never removed while focused. Sync does
// not fire OnLinesChange.
func (e *Engine) Sync(incoming []outline.Line) {
	in := outline.Normalize(incoming, e.maxLevel, e.newID)
	inIdx := make(map[string]int, len(in))
	for k, l := range in {
		inIdx[l.ID] = k
	}

	local := e.doc.Lines()
	refs := false
	for k := range local {
		if j, ok := inIdx[local[k].ID]; ok && in[j].DomainRef != "" && in[j].DomainRef != local[k].DomainRef {
			local[k].DomainRef = in[j].DomainRef
			refs = true
		}
	}

	if sameIDs(local, inIdx) {
		if refs {
			if next, err := outline.NewDocument(local); err == nil {
				e.doc = next
			}
		}
		return
	}

	ci := e.curIdx()
	runStart, runEnd := e.doc.RunStart(ci), e.doc.RunEnd(ci)

	merged := make([]outline.Line, 0, max(len(local), len(in)))
	for k, l := range local {
		if _, ok := inIdx[l.ID]; ok || l.DomainRef == "" {
			merged = append(merged, l)
			continue
		}
		if k >= runStart && k <= runEnd {
			e.log.Info("deferring removal of focused line", zap.Error(HostSyncConflict{LineID: l.ID}))
			if _, ok := e.deferred[l.ID]; !ok {
				e.deferred[l.ID] = false
			}
			merged = append(merged, l)
		}
	}

	have := make(map[string]int, len(merged))
	for k, l := range merged {
		have[l.ID] = k
	}
	pos := 0
	for _, l := range in {
		if at, ok := have[l.ID]; ok {
			pos = at + 1
			if l.IsTitle() && pos < len(merged) && merged[pos].ID == outline.DescriptionID(l.ID) {
				pos++
			}
			continue
		}
		l.Content = e.tokens.ResolveContent(l.Content)
		merged = append(merged, outline.Line{})
		copy(merged[pos+1:], merged[pos:])
		merged[pos] = l
		for id, at := range have {
			if at >= pos {
				have[id] = at + 1
			}
		}
		have[l.ID] = pos
		pos++
	}

	next, err := outline.NewDocument(outline.Normalize(merged, e.maxLevel, e.newID))
	if err != nil {
		e.log.Error("sync produced an invalid document", zap.Error(err))
		return
	}
	e.replaceDoc(next)
	r := e.resolve(e.cursor)
	e.cursor, e.hint = r.Cursor, r.index
}

func sameIDs(local []outline.Line, in map[string]int) bool {
	if len(local) != len(in) {
		return false
	}
	for _, l := range local {
		if _, ok := in[l.ID]; !ok {
			return false
		}
	}
	return true
}

// settleDeferred applies removals held back by Sync once focus has left
// their run. Lines edited in the meantime are kept.
func (e *Engine) settleDeferred() {
	if len(e.deferred) == 0 {
		return
	}
	ci := e.curIdx()
	runStart, runEnd := e.doc.RunStart(ci), e.doc.RunEnd(ci)
	var drop []int
	for id, edited := range e.deferred {
		i := e.doc.Index(id)
		if i >= runStart && i <= runEnd {
			continue
		}
		delete(e.deferred, id)
		if i < 0 || edited {
			continue
		}
		drop = append(drop, i)
	}
	if len(drop) == 0 {
		return
	}
	next, _, err := e.removeLines(e.doc, drop)
	if err != nil {
		e.log.Debug("deferred removal rejected", zap.Error(err))
		return
	}
	e.replaceDoc(next)
	r := e.resolve(e.cursor)
	e.cursor, e.hint = r.Cursor, r.index
	e.commit()
}

// Package projection maps plan items to outline lines and back. It is the
// host side of the editor: Seed builds the lines an editor starts from, and
// Derive turns committed lines into the records the store persists.
package projection

import (
	"sort"
	"strings"
	"time"

	"plan-cli/internal/model"
	"plan-cli/internal/outline"
)

// Seed materializes items as lines. Each item becomes a title whose id and
// domain ref are the item id, followed by its description when it has one.
func Seed(items []model.PlanItem) []outline.Line {
	sorted := append([]model.PlanItem(nil), items...)
	model.SortByPosition(sorted)

	out := make([]outline.Line, 0, len(sorted))
	for _, it := range sorted {
		t := outline.NewTitle(it.ID, it.Level, it.Titled())
		t.DomainRef = it.ID
		out = append(out, t)
		if it.HasDescription || strings.TrimSpace(it.Description) != "" || len(it.DescriptionContent) > 0 {
			out = append(out, outline.Line{
				ID:        outline.DescriptionID(it.ID),
				Level:     it.Level + 1,
				Mode:      outline.ModeDescription,
				Content:   it.Described().Normalize(),
				DomainRef: it.ID,
			})
		}
	}
	return out
}

// Derive turns lines into plan items. prev supplies creation times and lets
// unchanged items keep their UpdatedAt. Empty titles that were never saved
// are skipped.
func Derive(lines []outline.Line, prev map[string]model.PlanItem, now time.Time) []model.PlanItem {
	var out []model.PlanItem
	for i := 0; i < len(lines); i++ {
		l := lines[i]
		if !l.IsTitle() {
			continue
		}
		if l.Content.IsEmpty() && l.DomainRef == "" {
			continue
		}
		id := l.DomainRef
		if id == "" {
			id = l.ID
		}
		it := model.PlanItem{
			ID:           id,
			Title:        strings.TrimSpace(l.Content.PlainText()),
			TitleContent: l.Content.Clone(),
			Level:        l.Level,
			Position:     len(out),
		}
		if i+1 < len(lines) && lines[i+1].IsDescription() && lines[i+1].ID == outline.DescriptionID(l.ID) {
			d := lines[i+1]
			it.HasDescription = true
			it.Description = d.Content.PlainText()
			it.DescriptionContent = d.Content.Clone()
			i++
		}
		it.Tags, it.Dates = tokenRefs(it.TitleContent, it.DescriptionContent)

		if p, ok := prev[id]; ok {
			it.CreatedAt = p.CreatedAt
			it.UpdatedAt = p.UpdatedAt
			if !it.SameContent(p) {
				it.UpdatedAt = now
			}
		} else {
			it.CreatedAt, it.UpdatedAt = now, now
		}
		out = append(out, it)
	}
	return out
}

func tokenRefs(cs ...outline.Content) (tags, dates []string) {
	seenTag := map[string]bool{}
	seenDate := map[string]bool{}
	for _, c := range cs {
		for _, tok := range c.Tokens() {
			switch tok.Kind {
			case outline.TokenTag:
				if !seenTag[tok.RefID] {
					seenTag[tok.RefID] = true
					tags = append(tags, tok.RefID)
				}
			case outline.TokenDateMention:
				if !seenDate[tok.RefID] {
					seenDate[tok.RefID] = true
					dates = append(dates, tok.RefID)
				}
			}
		}
	}
	return tags, dates
}

// Diff computes the writes that turn prev into next.
func Diff(prev map[string]model.PlanItem, next []model.PlanItem) model.Changes {
	var ch model.Changes
	seen := make(map[string]struct{}, len(next))
	for _, it := range next {
		seen[it.ID] = struct{}{}
		if p, ok := prev[it.ID]; ok && p.SameContent(it) {
			continue
		}
		ch.Upserts = append(ch.Upserts, it)
	}
	for id := range prev {
		if _, ok := seen[id]; !ok {
			ch.Deletes = append(ch.Deletes, id)
		}
	}
	sort.Strings(ch.Deletes)
	return ch
}

// Index keys items by id.
func Index(items []model.PlanItem) map[string]model.PlanItem {
	out := make(map[string]model.PlanItem, len(items))
	for _, it := range items {
		out[it.ID] = it
	}
	return out
}

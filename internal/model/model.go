package model

import (
	"sort"
	"strings"
	"time"

	"plan-cli/internal/outline"
)

// PlanItem is the host record behind one title line and its optional
// description. Title and Description are the plain-text renderings of the
// rich content fields.
type PlanItem struct {
	ID          string `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Level       int    `json:"level" yaml:"level"`
	Position    int    `json:"position" yaml:"position"`

	// HasDescription distinguishes an empty description line from none.
	HasDescription bool `json:"hasDescription,omitempty" yaml:"hasDescription,omitempty"`

	TitleContent       outline.Content `json:"titleContent,omitempty" yaml:"-"`
	DescriptionContent outline.Content `json:"descriptionContent,omitempty" yaml:"-"`

	Tags  []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	Dates []string `json:"dates,omitempty" yaml:"dates,omitempty"`

	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" yaml:"updatedAt"`
}

// SameContent reports whether a and b would render the same lines.
func (p PlanItem) SameContent(o PlanItem) bool {
	return p.Title == o.Title &&
		p.Description == o.Description &&
		p.Level == o.Level &&
		p.Position == o.Position &&
		p.HasDescription == o.HasDescription &&
		p.Titled().Equal(o.Titled()) &&
		p.Described().Equal(o.Described())
}

// Titled returns the rich title, falling back to the plain one.
func (p PlanItem) Titled() outline.Content {
	if len(p.TitleContent) > 0 {
		return p.TitleContent
	}
	return outline.Text(p.Title)
}

func (p PlanItem) Described() outline.Content {
	if len(p.DescriptionContent) > 0 {
		return p.DescriptionContent
	}
	return outline.Text(p.Description)
}

// SortByPosition orders items for display. Ties keep creation order.
func SortByPosition(items []PlanItem) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Position != items[j].Position {
			return items[i].Position < items[j].Position
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
}

// NormalizeTag lowercases and strips a leading '#'.
func NormalizeTag(s string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), "#"))
}

// Changes is one batch of writes produced by an editing session.
type Changes struct {
	Upserts []PlanItem
	Deletes []string
}

func (c Changes) Empty() bool { return len(c.Upserts) == 0 && len(c.Deletes) == 0 }

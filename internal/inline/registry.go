// Package inline resolves inline token references (tags, date mentions) to
// display labels. It never mutates a document; callers store the resolved
// token themselves.
package inline

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"plan-cli/internal/outline"
)

const dateLayout = "2006-01-02"

type Tag struct {
	ID    string `json:"id" toml:"id"`
	Name  string `json:"name" toml:"name"`
	Color string `json:"color,omitempty" toml:"color"`
	Emoji string `json:"emoji,omitempty" toml:"emoji"`
}

type UnknownTagError struct {
	Ref string
}

func (e UnknownTagError) Error() string { return fmt.Sprintf("tag not found: %s", e.Ref) }

type Registry struct {
	tags  map[string]Tag
	order []string
	now   func() time.Time
}

type Option func(*Registry)

// WithClock overrides the clock used for relative date labels.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

func NewRegistry(tags []Tag, opts ...Option) *Registry {
	r := &Registry{tags: map[string]Tag{}, now: time.Now}
	for _, t := range tags {
		id := strings.TrimSpace(t.ID)
		if id == "" {
			continue
		}
		if _, dup := r.tags[id]; !dup {
			r.order = append(r.order, id)
		}
		t.ID = id
		r.tags[id] = t
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

func (r *Registry) Tags() []Tag {
	out := make([]Tag, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.tags[id])
	}
	return out
}

func (r *Registry) Tag(id string) (Tag, bool) {
	t, ok := r.tags[id]
	return t, ok
}

// FindTag matches by id, then by case-insensitive name (a leading '#' is ignored).
func (r *Registry) FindTag(ref string) (Tag, bool) {
	ref = strings.TrimPrefix(strings.TrimSpace(ref), "#")
	if t, ok := r.tags[ref]; ok {
		return t, true
	}
	for _, id := range r.order {
		if strings.EqualFold(r.tags[id].Name, ref) {
			return r.tags[id], true
		}
	}
	return Tag{}, false
}

// TagNames returns tag names sorted for completion prompts.
func (r *Registry) TagNames() []string {
	out := make([]string, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.tags[id].Name)
	}
	sort.Strings(out)
	return out
}

// Label renders the display text for a token.
func (r *Registry) Label(tok outline.Token) string {
	switch tok.Kind {
	case outline.TokenTag:
		if t, ok := r.tags[tok.RefID]; ok {
			if t.Emoji != "" {
				return "#" + t.Emoji + t.Name
			}
			return "#" + t.Name
		}
		return "#" + tok.RefID
	case outline.TokenDateMention:
		return "📅" + r.dateLabel(tok.RefID)
	default:
		return tok.RefID
	}
}

// Resolve returns tok with DisplayText refreshed.
func (r *Registry) Resolve(tok outline.Token) outline.Token {
	tok.DisplayText = r.Label(tok)
	return tok
}

func (r *Registry) ResolveContent(c outline.Content) outline.Content {
	return c.MapTokens(r.Resolve)
}

// TagToken builds a resolved tag token from an id or a name.
func (r *Registry) TagToken(ref string) (outline.Token, error) {
	t, ok := r.FindTag(ref)
	if !ok {
		return outline.Token{}, UnknownTagError{Ref: ref}
	}
	return r.Resolve(outline.Token{Kind: outline.TokenTag, RefID: t.ID}), nil
}

// DateToken parses a date expression (see ParseDate) into a resolved token.
func (r *Registry) DateToken(expr string) (outline.Token, error) {
	ref, err := ParseDate(expr, r.now())
	if err != nil {
		return outline.Token{}, err
	}
	return r.Resolve(outline.Token{Kind: outline.TokenDateMention, RefID: ref}), nil
}

func (r *Registry) dateLabel(ref string) string {
	start, end, ok := strings.Cut(ref, "/")
	a, err := time.Parse(dateLayout, start)
	if err != nil {
		return ref
	}
	if !ok {
		return r.dayLabel(a)
	}
	b, err := time.Parse(dateLayout, end)
	if err != nil {
		return ref
	}
	return r.dayLabel(a) + "–" + r.dayLabel(b)
}

func (r *Registry) dayLabel(d time.Time) string {
	now := r.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	switch int(d.Sub(today).Hours() / 24) {
	case 0:
		return "Today"
	case 1:
		return "Tomorrow"
	case -1:
		return "Yesterday"
	}
	if d.Year() != now.Year() {
		return d.Format("Jan 2 2006")
	}
	return d.Format("Mon Jan 2")
}

// ParseDate accepts today, tomorrow, yesterday, +Nd / -Nd, YYYY-MM-DD and
// "A/B" ranges of those, returning the canonical ref id.
func ParseDate(expr string, now time.Time) (string, error) {
	expr = strings.TrimSpace(expr)
	if start, end, ok := strings.Cut(expr, "/"); ok {
		a, err := parseDay(start, now)
		if err != nil {
			return "", err
		}
		b, err := parseDay(end, now)
		if err != nil {
			return "", err
		}
		if b.Before(a) {
			return "", fmt.Errorf("date range ends before it starts: %s", expr)
		}
		return a.Format(dateLayout) + "/" + b.Format(dateLayout), nil
	}
	d, err := parseDay(expr, now)
	if err != nil {
		return "", err
	}
	return d.Format(dateLayout), nil
}

func parseDay(s string, now time.Time) (time.Time, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	switch s {
	case "today", "":
		return today, nil
	case "tomorrow":
		return today.AddDate(0, 0, 1), nil
	case "yesterday":
		return today.AddDate(0, 0, -1), nil
	}
	if (strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-")) && strings.HasSuffix(s, "d") {
		n, err := strconv.Atoi(strings.TrimSuffix(s, "d"))
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid relative date: %s", s)
		}
		return today.AddDate(0, 0, n), nil
	}
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date: %s", s)
	}
	return d, nil
}

package projection

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"plan-cli/internal/model"
	"plan-cli/internal/outline"
)

var t0 = time.Date(2025, 12, 21, 9, 0, 0, 0, time.UTC)

func TestSeed_PairsDescriptions(t *testing.T) {
	items := []model.PlanItem{
		{ID: "b", Title: "Second", Position: 1},
		{ID: "a", Title: "First", Description: "notes", Position: 0},
	}

	lines := Seed(items)

	var ids []string
	for _, l := range lines {
		ids = append(ids, l.ID)
	}
	if diff := cmp.Diff([]string{"a", "a-desc", "b"}, ids); diff != "" {
		t.Fatalf("ids (-want +got):\n%s", diff)
	}
	if err := outline.Validate(lines); err != nil {
		t.Fatalf("seeded lines invalid: %v", err)
	}
	if lines[1].DomainRef != "a" || lines[1].Level != 1 {
		t.Fatalf("unexpected description %+v", lines[1])
	}
}

func TestDerive_RoundTripsSeed(t *testing.T) {
	items := []model.PlanItem{
		{ID: "a", Title: "First", Description: "notes", HasDescription: true, Position: 0, CreatedAt: t0, UpdatedAt: t0},
		{ID: "b", Title: "Second", Level: 1, Position: 1, CreatedAt: t0, UpdatedAt: t0},
	}
	got := Derive(Seed(items), Index(items), t0.Add(time.Hour))

	if len(got) != 2 {
		t.Fatalf("got %d items", len(got))
	}
	for i := range items {
		if !got[i].SameContent(items[i]) || !got[i].UpdatedAt.Equal(t0) {
			t.Fatalf("item %d changed: %+v", i, got[i])
		}
	}
}

func TestDerive_TokensAndDrafts(t *testing.T) {
	c := outline.Text("Call mom ").
		InsertToken(9, outline.Token{Kind: outline.TokenTag, RefID: "home"}).
		InsertToken(10, outline.Token{Kind: outline.TokenDateMention, RefID: "2025-12-22"})
	lines := []outline.Line{
		outline.NewTitle("line-1", 0, c),
		outline.NewTitle("line-2", 0, nil),
	}

	got := Derive(lines, nil, t0)

	if len(got) != 1 {
		t.Fatalf("blank draft should be skipped, got %+v", got)
	}
	if diff := cmp.Diff([]string{"home"}, got[0].Tags); diff != "" {
		t.Fatalf("tags (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"2025-12-22"}, got[0].Dates); diff != "" {
		t.Fatalf("dates (-want +got):\n%s", diff)
	}
	if got[0].ID != "line-1" || !got[0].CreatedAt.Equal(t0) {
		t.Fatalf("unexpected item %+v", got[0])
	}
}

func TestDiff(t *testing.T) {
	prev := Index([]model.PlanItem{{ID: "a", Title: "A"}, {ID: "b", Title: "B", Position: 1}})
	next := []model.PlanItem{{ID: "a", Title: "A"}, {ID: "c", Title: "C", Position: 1}}

	ch := Diff(prev, next)

	if len(ch.Upserts) != 1 || ch.Upserts[0].ID != "c" {
		t.Fatalf("upserts = %+v", ch.Upserts)
	}
	if diff := cmp.Diff([]string{"b"}, ch.Deletes); diff != "" {
		t.Fatalf("deletes (-want +got):\n%s", diff)
	}
}

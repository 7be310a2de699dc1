package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"plan-cli/internal/model"
	"plan-cli/internal/outline"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "nested", DefaultFileName))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_SaveLoad_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)
	now := time.Date(2025, 12, 21, 9, 0, 0, 0, time.UTC)

	title := outline.Text("Call ").InsertToken(5, outline.Token{Kind: outline.TokenTag, RefID: "home", DisplayText: "#home"})
	items := []model.PlanItem{
		{ID: "b", Title: "Second", Position: 1, Level: 1, CreatedAt: now, UpdatedAt: now},
		{ID: "a", Title: "Call #home", TitleContent: title, Description: "notes", HasDescription: true, Tags: []string{"home"}, CreatedAt: now, UpdatedAt: now},
	}
	require.NoError(t, s.Save(ctx, items))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "a", got[0].ID)
	require.True(t, got[0].TitleContent.Equal(title))
	require.True(t, got[0].HasDescription)
	require.Equal(t, []string{"home"}, got[0].Tags)
	require.True(t, got[0].CreatedAt.Equal(now))
	require.Equal(t, 1, got[1].Level)

	require.NoError(t, s.Save(ctx, items[:1]))
	got, err = s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func TestStore_ApplyAppendDelete(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)

	a, err := s.Append(ctx, model.PlanItem{Title: "First"})
	require.NoError(t, err)
	require.NotEmpty(t, a.ID)
	b, err := s.Append(ctx, model.PlanItem{Title: "Second", Description: "d"})
	require.NoError(t, err)
	require.Equal(t, 1, b.Position)
	require.True(t, b.HasDescription)

	a.Title = "First!"
	require.NoError(t, s.Apply(ctx, model.Changes{Upserts: []model.PlanItem{a}, Deletes: []string{b.ID}}))

	got, err := s.Get(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, "First!", got.Title)

	var nf NotFoundError
	_, err = s.Get(ctx, b.ID)
	require.True(t, errors.As(err, &nf))
	require.True(t, errors.As(s.Delete(ctx, b.ID), &nf))
	require.NoError(t, s.Delete(ctx, a.ID))
}

func TestOpen_RejectsEmptyPath(t *testing.T) {
	_, err := Open(context.Background(), "  ")
	require.Error(t, err)
}

func TestWatch_NotifiesOnWrite(t *testing.T) {
	s := openTemp(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fired := make(chan struct{}, 8)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, s.Path(), 20*time.Millisecond, nil, func() { fired <- struct{}{} })
	}()

	// Give the watcher a moment to register before writing.
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	for n := 0; ; n++ {
		select {
		case <-fired:
			cancel()
			require.NoError(t, <-done)
			return
		case <-tick.C:
			_, err := s.Append(context.Background(), model.PlanItem{Title: "x"})
			require.NoError(t, err)
		case <-deadline:
			t.Fatalf("watcher never fired after %d writes", n)
		}
	}
}

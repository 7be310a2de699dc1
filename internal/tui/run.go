package tui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"plan-cli/internal/store"
)

const closeTimeout = 5 * time.Second

// Run starts the editor and blocks until the user quits or ctx is done.
// Pending edits are written before Run returns.
func Run(ctx context.Context, opts Options) error {
	applyColorProfilePreference()
	applyThemePreference()

	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	m.program.Store(p)

	final, runErr := p.Run()
	if errors.Is(runErr, tea.ErrProgramKilled) && ctx.Err() != nil {
		runErr = nil
	}
	if fm, ok := final.(Model); ok {
		m = fm
	}
	cctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	return errors.Join(runErr, m.Close(cctx))
}

// RunWithWatcher runs the editor and reloads it whenever the database file
// changes underneath, e.g. after `plan add` in another terminal.
func RunWithWatcher(ctx context.Context, opts Options, dbPath string, debounce time.Duration) error {
	applyColorProfilePreference()
	applyThemePreference()

	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	opts.Logger = log

	m := New(opts)
	g, gctx := errgroup.WithContext(ctx)
	gctx, cancel := context.WithCancel(gctx)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(gctx))
	m.program.Store(p)

	g.Go(func() error {
		defer cancel()
		final, err := p.Run()
		if errors.Is(err, tea.ErrProgramKilled) && gctx.Err() != nil {
			err = nil
		}
		if fm, ok := final.(Model); ok {
			m = fm
		}
		return err
	})
	g.Go(func() error {
		err := store.Watch(gctx, dbPath, debounce, log.Named("watch"), func() {
			p.Send(StoreChangedMsg{})
		})
		if err != nil && gctx.Err() == nil {
			// The editor keeps working without live reload.
			log.Warn("store watcher stopped", zap.Error(err))
		}
		return nil
	})
	runErr := g.Wait()

	cctx, cctxCancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cctxCancel()
	return errors.Join(runErr, m.Close(cctx))
}

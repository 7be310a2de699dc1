// Package tui hosts the outline editor in a Bubble Tea program: it maps
// terminal keys onto editor intents, renders the lines and runs autosave and
// store reloads around the engine.
package tui

import (
	"context"
	"sync/atomic"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"plan-cli/internal/clipboard"
	"plan-cli/internal/config"
	"plan-cli/internal/editor"
	"plan-cli/internal/inline"
	"plan-cli/internal/model"
	"plan-cli/internal/projection"
)

// Loader reads the current records from the store.
type Loader interface {
	Load(ctx context.Context) ([]model.PlanItem, error)
}

// Clipboard is the system clipboard as seen by the editor.
type Clipboard interface {
	Write(text string) error
	Read() (string, error)
}

type systemClipboard struct{}

func (systemClipboard) Write(text string) error { return clipboard.WriteSystem(text) }
func (systemClipboard) Read() (string, error)   { return clipboard.ReadSystem() }

type Options struct {
	Items     []model.PlanItem
	Loader    Loader
	Sink      projection.Sink
	Config    config.Config
	Logger    *zap.Logger
	Decorator Decorator
	Clipboard Clipboard
}

type promptKind int

const (
	promptNone promptKind = iota
	promptTag
	promptDate
)

type Model struct {
	engine *editor.Engine
	queue  *editor.Queue
	saver  *projection.Autosaver
	loader Loader
	tokens *inline.Registry
	deco   Decorator
	clip   Clipboard
	log    *zap.Logger
	keys   keyMap
	indent int

	prompt     textinput.Model
	promptKind promptKind

	width, height int
	status        string
	statusErr     bool

	program *atomic.Pointer[tea.Program]
}

// New builds the editor model over opts.Items.
func New(opts Options) Model {
	cfg := opts.Config
	if cfg.MaxLevel == 0 {
		cfg = config.Default()
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	m := Model{
		queue:   &editor.Queue{},
		loader:  opts.Loader,
		tokens:  inline.NewRegistry(cfg.Tags),
		deco:    opts.Decorator,
		clip:    opts.Clipboard,
		log:     log,
		keys:    newKeyMap(cfg.Keys),
		indent:  cfg.IndentWidth,
		program: &atomic.Pointer[tea.Program]{},
	}
	if m.deco == nil {
		m.deco = bulletDecorator{}
	}
	if m.clip == nil {
		m.clip = systemClipboard{}
	}
	if opts.Sink != nil {
		program := m.program
		m.saver = projection.NewAutosaver(projection.AutosaverOpts{
			Sink:     opts.Sink,
			Debounce: cfg.AutosaveDebounce(),
			Logger:   log,
			OnError: func(err error) {
				if p := program.Load(); p != nil {
					p.Send(autosaveErrMsg{err: err})
				}
			},
		})
		m.saver.SetBaseline(opts.Items)
	}

	saver := m.saver
	m.engine = editor.New(projection.Seed(opts.Items), editor.Options{
		MaxLevel:    cfg.MaxLevel,
		IndentWidth: cfg.IndentWidth,
		Tokens:      m.tokens,
		Logger:      log.Named("editor"),
		Scheduler:   m.queue,
		Hooks: editor.Hooks{
			OnLinesChange: saver.Notify,
		},
	})

	ti := textinput.New()
	ti.CharLimit = 64
	ti.Cursor.SetMode(cursor.CursorStatic)
	m.prompt = ti
	return m
}

// Engine exposes the editor, mostly to tests and embedding hosts.
func (m Model) Engine() *editor.Engine { return m.engine }

func (m Model) Init() tea.Cmd {
	return focusCmd(m.queue)
}

// Close commits the focused line and writes everything still pending.
func (m Model) Close(ctx context.Context) error {
	m.engine.Commit()
	if m.saver == nil {
		return nil
	}
	return m.saver.Close(ctx)
}

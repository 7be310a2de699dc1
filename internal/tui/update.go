package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"plan-cli/internal/editor"
	"plan-cli/internal/model"
	"plan-cli/internal/projection"
)

type (
	// focusMsg runs deferred focus delivery after the view rendered.
	focusMsg struct{}
	// StoreChangedMsg asks the editor to reload records from the store.
	StoreChangedMsg struct{}
	itemsLoadedMsg  struct {
		items []model.PlanItem
		err   error
	}
	savedMsg       struct{ err error }
	autosaveErrMsg struct{ err error }
	pasteMsg       struct {
		text string
		err  error
	}
	clipboardWrittenMsg struct{ err error }
)

const ioTimeout = 10 * time.Second

func focusCmd(q *editor.Queue) tea.Cmd {
	if q.Len() == 0 {
		return nil
	}
	return func() tea.Msg { return focusMsg{} }
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case focusMsg:
		m.queue.Drain()
		return m, nil

	case StoreChangedMsg:
		cmd = m.reloadCmd()

	case itemsLoadedMsg:
		if msg.err != nil {
			m.setError("reload", msg.err)
			break
		}
		m.engine.Sync(projection.Seed(msg.items))
		if m.saver != nil {
			m.saver.SetBaseline(msg.items)
		}

	case savedMsg:
		if msg.err != nil {
			m.setError("save", msg.err)
			break
		}
		m.setStatus("saved")

	case autosaveErrMsg:
		m.setError("autosave", msg.err)

	case pasteMsg:
		if msg.err != nil {
			m.setError("paste", msg.err)
			break
		}
		m.engine.PasteText(msg.text)

	case clipboardWrittenMsg:
		if msg.err != nil {
			m.setError("copy", msg.err)
			break
		}
		m.setStatus("copied")

	case tea.KeyMsg:
		if m.promptKind != promptNone {
			m, cmd = m.updatePrompt(msg)
		} else {
			m, cmd = m.handleKey(msg)
		}
	}
	return m, tea.Batch(cmd, focusCmd(m.queue))
}

func (m *Model) setStatus(s string) {
	m.status, m.statusErr = s, false
}

func (m *Model) setError(op string, err error) {
	m.log.Warn(op+" failed", zap.Error(err))
	m.status, m.statusErr = fmt.Sprintf("%s failed: %v", op, err), true
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	e := m.engine
	switch {
	case key.Matches(msg, m.keys.Quit):
		e.Commit()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Save):
		e.Commit()
		return m, m.saveCmd()
	case key.Matches(msg, m.keys.Reload):
		return m, m.reloadCmd()
	case key.Matches(msg, m.keys.Copy):
		return m, m.writeClipboardCmd(e.Copy().Plain)
	case key.Matches(msg, m.keys.Cut):
		return m, m.writeClipboardCmd(e.Cut().Plain)
	case key.Matches(msg, m.keys.Paste):
		return m, m.readClipboardCmd()
	case key.Matches(msg, m.keys.SelectAll):
		e.SelectAll()
		return m, nil
	case key.Matches(msg, m.keys.Description):
		e.HandleKey(editor.KeyEnter, editor.ModShift)
		return m, nil
	case key.Matches(msg, m.keys.Tag):
		return m.openPrompt(promptTag), nil
	case key.Matches(msg, m.keys.Date):
		return m.openPrompt(promptDate), nil
	case key.Matches(msg, m.keys.Bold):
		e.ToggleMark(editor.MarkBold)
		return m, nil
	case key.Matches(msg, m.keys.Italic):
		e.ToggleMark(editor.MarkItalic)
		return m, nil
	case key.Matches(msg, m.keys.Underline):
		e.ToggleMark(editor.MarkUnderline)
		return m, nil
	case key.Matches(msg, m.keys.Strike):
		e.ToggleMark(editor.MarkStrikethrough)
		return m, nil
	}

	if k, mods, ok := engineKey(msg); ok {
		e.HandleKey(k, mods)
		return m, nil
	}
	switch msg.Type {
	case tea.KeyRunes:
		if msg.Paste {
			e.PasteText(string(msg.Runes))
		} else {
			e.InsertText(string(msg.Runes))
		}
	case tea.KeySpace:
		e.InsertText(" ")
	}
	return m, nil
}

// engineKey translates terminal keys into editor intents.
func engineKey(msg tea.KeyMsg) (editor.Key, editor.Modifiers, bool) {
	var mods editor.Modifiers
	if msg.Alt {
		mods |= editor.ModAlt
	}
	switch msg.Type {
	case tea.KeyEnter:
		return editor.KeyEnter, mods, true
	case tea.KeyTab:
		return editor.KeyTab, mods, true
	case tea.KeyShiftTab:
		return editor.KeyTab, mods | editor.ModShift, true
	case tea.KeyBackspace:
		return editor.KeyBackspace, mods, true
	case tea.KeyDelete:
		return editor.KeyDelete, mods, true
	case tea.KeyUp:
		return editor.KeyUp, mods, true
	case tea.KeyDown:
		return editor.KeyDown, mods, true
	case tea.KeyShiftUp:
		return editor.KeyUp, mods | editor.ModShift, true
	case tea.KeyShiftDown:
		return editor.KeyDown, mods | editor.ModShift, true
	case tea.KeyLeft:
		return editor.KeyLeft, mods, true
	case tea.KeyRight:
		return editor.KeyRight, mods, true
	case tea.KeyHome:
		return editor.KeyHome, mods, true
	case tea.KeyEnd:
		return editor.KeyEnd, mods, true
	case tea.KeyEsc:
		return editor.KeyEscape, mods, true
	}
	return 0, 0, false
}

func (m Model) openPrompt(kind promptKind) Model {
	m.promptKind = kind
	m.prompt.Reset()
	switch kind {
	case promptTag:
		m.prompt.Prompt = "tag: "
		m.prompt.Placeholder = "name or id"
	case promptDate:
		m.prompt.Prompt = "date: "
		m.prompt.Placeholder = "today, +3d, 2025-12-24"
	}
	m.prompt.Focus()
	return m
}

func (m Model) updatePrompt(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.promptKind = promptNone
		m.prompt.Blur()
		return m, nil
	case tea.KeyEnter:
		v := m.prompt.Value()
		var err error
		switch m.promptKind {
		case promptTag:
			err = m.engine.InsertTag(v)
		case promptDate:
			err = m.engine.InsertDateMention(v)
		}
		m.promptKind = promptNone
		m.prompt.Blur()
		if err != nil {
			m.setError("insert", err)
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return m, cmd
}

func (m Model) saveCmd() tea.Cmd {
	saver := m.saver
	if saver == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), ioTimeout)
		defer cancel()
		return savedMsg{err: saver.Flush(ctx)}
	}
}

// reloadCmd flushes local edits first so a reload never resurrects lines
// that were just deleted here.
func (m Model) reloadCmd() tea.Cmd {
	saver, loader := m.saver, m.loader
	if loader == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), ioTimeout)
		defer cancel()
		if saver != nil {
			if err := saver.Flush(ctx); err != nil {
				return itemsLoadedMsg{err: err}
			}
		}
		items, err := loader.Load(ctx)
		return itemsLoadedMsg{items: items, err: err}
	}
}

func (m Model) writeClipboardCmd(text string) tea.Cmd {
	clip := m.clip
	return func() tea.Msg { return clipboardWrittenMsg{err: clip.Write(text)} }
}

func (m Model) readClipboardCmd() tea.Cmd {
	clip := m.clip
	return func() tea.Msg {
		s, err := clip.Read()
		return pasteMsg{text: s, err: err}
	}
}

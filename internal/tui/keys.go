package tui

import (
	"github.com/charmbracelet/bubbles/key"

	"plan-cli/internal/config"
)

// keyMap holds the host-level bindings. Structural editing keys (Enter, Tab,
// arrows, Backspace...) are not configurable and go straight to the engine.
type keyMap struct {
	Quit        key.Binding
	Save        key.Binding
	Reload      key.Binding
	Copy        key.Binding
	Cut         key.Binding
	Paste       key.Binding
	SelectAll   key.Binding
	Description key.Binding
	Tag         key.Binding
	Date        key.Binding
	Bold        key.Binding
	Italic      key.Binding
	Underline   key.Binding
	Strike      key.Binding
}

func binding(keys, help string) key.Binding {
	ks := config.Keys(keys)
	if len(ks) == 0 {
		return key.NewBinding(key.WithDisabled())
	}
	return key.NewBinding(key.WithKeys(ks...), key.WithHelp(ks[0], help))
}

func newKeyMap(k config.Keymap) keyMap {
	return keyMap{
		Quit:        binding(k.Quit, "quit"),
		Save:        binding(k.Save, "save"),
		Reload:      binding(k.Reload, "reload"),
		Copy:        binding(k.Copy, "copy"),
		Cut:         binding(k.Cut, "cut"),
		Paste:       binding(k.Paste, "paste"),
		SelectAll:   binding(k.SelectAll, "select all"),
		Description: binding(k.Description, "description"),
		Tag:         binding(k.Tag, "tag"),
		Date:        binding(k.Date, "date"),
		Bold:        binding(k.Bold, "bold"),
		Italic:      binding(k.Italic, "italic"),
		Underline:   binding(k.Underline, "underline"),
		Strike:      binding(k.Strike, "strike"),
	}
}

// ShortHelp is shown in the status bar.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Save, k.Description, k.Tag, k.Date, k.Copy, k.Paste, k.Quit}
}

package editor

type Key int

const (
	KeyEnter Key = iota + 1
	KeyTab
	KeyBackspace
	KeyDelete
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
	KeyEscape
)

func (k Key) String() string {
	switch k {
	case KeyEnter:
		return "enter"
	case KeyTab:
		return "tab"
	case KeyBackspace:
		return "backspace"
	case KeyDelete:
		return "delete"
	case KeyUp:
		return "up"
	case KeyDown:
		return "down"
	case KeyLeft:
		return "left"
	case KeyRight:
		return "right"
	case KeyHome:
		return "home"
	case KeyEnd:
		return "end"
	case KeyEscape:
		return "esc"
	default:
		return "unknown"
	}
}

type Modifiers uint8

const (
	ModShift Modifiers = 1 << iota
	ModCtrl
	ModAlt
	ModMeta
)

func (m Modifiers) Has(x Modifiers) bool { return m&x != 0 }

// HandleKey applies one keyboard intent. It reports whether the key was
// consumed; keys the engine has no rule for are left to the host.
func (e *Engine) HandleKey(k Key, mods Modifiers) bool {
	shift := mods.Has(ModShift)
	if (k == KeyBackspace || k == KeyDelete) && e.sel.active() {
		return e.deleteSelection()
	}
	switch k {
	case KeyEnter:
		e.sel.clear()
		if shift {
			return e.shiftEnter()
		}
		return e.enter()
	case KeyTab:
		if shift {
			return e.outdent()
		}
		return e.indent()
	case KeyBackspace:
		return e.backspace()
	case KeyDelete:
		return e.deleteForward()
	case KeyUp, KeyDown:
		dir := 1
		if k == KeyUp {
			dir = -1
		}
		if shift {
			return e.extend(dir)
		}
		e.ClearSelection()
		return e.vertical(dir)
	case KeyLeft, KeyRight:
		e.ClearSelection()
		if k == KeyLeft {
			return e.left()
		}
		return e.right()
	case KeyHome:
		e.setOffset(0)
		return true
	case KeyEnd:
		e.setOffset(e.FocusedLine().Content.Len())
		return true
	case KeyEscape:
		e.ClearSelection()
		return true
	}
	return false
}

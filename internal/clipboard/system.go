package clipboard

import (
	"bytes"
	"errors"
	"os/exec"
	"runtime"
	"strings"
)

// ErrNoClipboard is returned when no clipboard helper is installed.
var ErrNoClipboard = errors.New("no clipboard command available")

type clipboardCmd struct {
	name string
	args []string
}

func writeCmds() []clipboardCmd {
	switch runtime.GOOS {
	case "darwin":
		return []clipboardCmd{{name: "pbcopy"}}
	case "windows":
		return []clipboardCmd{
			{name: "cmd", args: []string{"/c", "clip"}},
			{name: "powershell", args: []string{"-NoProfile", "-Command", "Set-Clipboard"}},
		}
	default:
		// Prefer Wayland if available, then X11 fallbacks.
		return []clipboardCmd{
			{name: "wl-copy"},
			{name: "xclip", args: []string{"-selection", "clipboard"}},
			{name: "xsel", args: []string{"--clipboard", "--input"}},
		}
	}
}

func readCmds() []clipboardCmd {
	switch runtime.GOOS {
	case "darwin":
		return []clipboardCmd{{name: "pbpaste"}}
	case "windows":
		return []clipboardCmd{{name: "powershell", args: []string{"-NoProfile", "-Command", "Get-Clipboard"}}}
	default:
		return []clipboardCmd{
			{name: "wl-paste", args: []string{"--no-newline"}},
			{name: "xclip", args: []string{"-selection", "clipboard", "-o"}},
			{name: "xsel", args: []string{"--clipboard", "--output"}},
		}
	}
}

// WriteSystem puts the plain form on the OS clipboard. Only plain text is
// exported; the rich form stays in-process (see Engine.PasteText).
func WriteSystem(s string) error {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	var last error = ErrNoClipboard
	for _, c := range writeCmds() {
		if _, err := exec.LookPath(c.name); err != nil {
			continue
		}
		cmd := exec.Command(c.name, c.args...)
		cmd.Stdin = strings.NewReader(s)
		if err := cmd.Run(); err != nil {
			last = errors.New(c.name + ": " + err.Error())
			continue
		}
		return nil
	}
	return last
}

func ReadSystem() (string, error) {
	var last error = ErrNoClipboard
	for _, c := range readCmds() {
		if _, err := exec.LookPath(c.name); err != nil {
			continue
		}
		var out bytes.Buffer
		cmd := exec.Command(c.name, c.args...)
		cmd.Stdout = &out
		if err := cmd.Run(); err != nil {
			last = errors.New(c.name + ": " + err.Error())
			continue
		}
		return strings.ReplaceAll(out.String(), "\r\n", "\n"), nil
	}
	return "", last
}

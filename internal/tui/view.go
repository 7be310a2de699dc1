package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"

	"plan-cli/internal/outline"
)

const defaultWidth = 80

func (m Model) View() string {
	width := m.width
	if width <= 0 {
		width = defaultWidth
	}
	rows := m.renderLines(width)

	footer := m.renderFooter(width)
	if m.height > 0 {
		avail := m.height - lipgloss.Height(footer)
		if avail < 1 {
			avail = 1
		}
		rows = m.scroll(rows, avail)
	}
	return strings.Join(rows, "\n") + "\n" + footer
}

// scroll keeps the focused row inside a window of n rows.
func (m Model) scroll(rows []string, n int) []string {
	if len(rows) <= n {
		return rows
	}
	focus := m.engine.Document().Index(m.engine.Cursor().LineID)
	start := 0
	if focus >= n {
		start = focus - n + 1
	}
	return rows[start : start+n]
}

func (m Model) renderLines(width int) []string {
	e := m.engine
	cur := e.Cursor()
	lines := e.Lines()
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		indent := strings.Repeat(" ", l.Level*m.indent)
		prefix := m.deco.Prefix(l)
		cursor := -1
		if l.ID == cur.LineID && m.promptKind == promptNone {
			cursor = cur.Offset
		}
		body := m.renderContent(l, cursor)
		row := indent + prefix + body + styleMuted().Render(m.deco.Suffix(l))
		if e.IsSelected(l.ID) {
			row = styleSelected().Render(xansi.Strip(row))
		}
		if xansi.StringWidth(row) > width {
			row = xansi.Truncate(row, width, "…")
		}
		out = append(out, row)
	}
	return out
}

// renderContent styles each span. Soft breaks in descriptions render as a
// visible return marker so a line stays one row.
func (m Model) renderContent(l outline.Line, cursor int) string {
	var b strings.Builder
	pos := 0
	base := lipgloss.NewStyle()
	if l.IsDescription() {
		base = styleMuted()
	}
	put := func(s string, st lipgloss.Style) {
		if pos == cursor {
			b.WriteString(styleCursor().Render(s))
		} else {
			b.WriteString(st.Render(s))
		}
		pos++
	}
	for _, sp := range l.Content {
		if sp.Token != nil {
			put(chipLabel(*sp.Token), styleChip())
			continue
		}
		st := markStyle(base, sp.Marks)
		for _, r := range sp.Text {
			s := string(r)
			if r == '\n' {
				s = "↵"
			}
			put(s, st)
		}
	}
	if cursor >= 0 && pos <= cursor {
		b.WriteString(styleCursor().Render(" "))
	}
	return b.String()
}

func chipLabel(t outline.Token) string {
	switch t.Kind {
	case outline.TokenTag:
		return "#" + t.Label()
	case outline.TokenDateMention:
		return "@" + t.Label()
	}
	return t.Label()
}

func markStyle(st lipgloss.Style, mk outline.Marks) lipgloss.Style {
	if mk.Bold {
		st = st.Bold(true)
	}
	if mk.Italic {
		st = st.Italic(true)
	}
	if mk.Underline {
		st = st.Underline(true)
	}
	if mk.Strikethrough {
		st = st.Strikethrough(true)
	}
	if mk.Color != "" {
		st = st.Foreground(lipgloss.Color(mk.Color))
	}
	return st
}

func (m Model) renderFooter(width int) string {
	if m.promptKind != promptNone {
		return m.prompt.View()
	}
	var parts []string
	for _, b := range m.keys.ShortHelp() {
		if !b.Enabled() {
			continue
		}
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	left := strings.Join(parts, " · ")
	if m.status != "" {
		st := styleMuted()
		if m.statusErr {
			st = styleError()
		}
		left = st.Render(m.status) + "  " + left
	}
	return styleStatus().Width(width).Render(xansi.Truncate(left, width, "…"))
}

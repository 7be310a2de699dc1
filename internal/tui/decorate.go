package tui

import "plan-cli/internal/outline"

// Decorator adds presentation around a line without touching its content.
type Decorator interface {
	Prefix(l outline.Line) string
	Suffix(l outline.Line) string
}

type bulletDecorator struct{}

func (bulletDecorator) Prefix(l outline.Line) string {
	if l.IsDescription() {
		return "  "
	}
	if l.Level%2 == 1 {
		return "◦ "
	}
	return "• "
}

// Suffix flags titles the store has not seen yet.
func (bulletDecorator) Suffix(l outline.Line) string {
	if l.IsTitle() && l.DomainRef == "" && !l.Content.IsEmpty() {
		return " *"
	}
	return ""
}

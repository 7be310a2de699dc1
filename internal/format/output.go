package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"plan-cli/internal/model"
)

// Write writes v in the requested format.
//
// Supported formats:
// - json (default)
// - yaml
func Write(w io.Writer, v any, format string, pretty bool) error {
	switch format {
	case "", "json":
		return WriteJSON(w, v, pretty)
	case "yaml", "yml":
		return WriteYAML(w, v)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// WriteItems is Write for plan items, adding the human formats text and
// markdown.
func WriteItems(w io.Writer, items []model.PlanItem, format string, pretty bool) error {
	switch format {
	case "text", "txt":
		_, err := io.WriteString(w, Text(items))
		return err
	case "markdown", "md":
		_, err := io.WriteString(w, Markdown(items))
		return err
	}
	if items == nil {
		items = []model.PlanItem{}
	}
	return Write(w, items, format, pretty)
}

func WriteJSON(w io.Writer, v any, pretty bool) error {
	var b []byte
	var err error
	if pretty {
		b, err = json.MarshalIndent(v, "", "  ")
	} else {
		b, err = json.Marshal(v)
	}
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(b))
	return err
}

func WriteYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// Text renders one line per item, indented by level, with the id last.
func Text(items []model.PlanItem) string {
	var b strings.Builder
	for _, it := range items {
		b.WriteString(strings.Repeat("  ", it.Level))
		b.WriteString("- ")
		b.WriteString(it.Title)
		fmt.Fprintf(&b, "  (%s)\n", it.ID)
		if d := strings.TrimSpace(it.Description); d != "" {
			for _, seg := range strings.Split(d, "\n") {
				b.WriteString(strings.Repeat("  ", it.Level+1))
				b.WriteString(seg)
				b.WriteByte('\n')
			}
		}
	}
	return b.String()
}

// Markdown renders items as a nested list. Descriptions become quoted
// paragraphs under their item.
func Markdown(items []model.PlanItem) string {
	var b strings.Builder
	b.WriteString("# Plan\n\n")
	if len(items) == 0 {
		b.WriteString("_Nothing planned._\n")
		return b.String()
	}
	for _, it := range items {
		indent := strings.Repeat("  ", it.Level)
		title := strings.TrimSpace(it.Title)
		if title == "" {
			title = "_(untitled)_"
		}
		fmt.Fprintf(&b, "%s- %s", indent, title)
		for _, d := range it.Dates {
			fmt.Fprintf(&b, " `%s`", d)
		}
		b.WriteByte('\n')
		if d := strings.TrimSpace(it.Description); d != "" {
			for _, seg := range strings.Split(d, "\n") {
				fmt.Fprintf(&b, "%s  > %s\n", indent, seg)
			}
		}
	}
	return b.String()
}

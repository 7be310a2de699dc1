package format

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"plan-cli/internal/model"
)

var sample = []model.PlanItem{
	{ID: "a", Title: "Groceries", Description: "milk\neggs"},
	{ID: "b", Title: "Milk", Level: 1, Dates: []string{"2025-12-22"}},
}

func TestWriteItems_JSONAndYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteItems(&buf, sample, "json", false))
	var back []model.PlanItem
	require.NoError(t, json.Unmarshal(buf.Bytes(), &back))
	require.Len(t, back, 2)

	buf.Reset()
	require.NoError(t, WriteItems(&buf, sample, "yaml", false))
	var y []map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &y))
	require.Equal(t, "Groceries", y[0]["title"])

	buf.Reset()
	require.NoError(t, WriteItems(&buf, nil, "json", false))
	require.Equal(t, "[]\n", buf.String())
}

func TestText(t *testing.T) {
	want := "- Groceries  (a)\n  milk\n  eggs\n  - Milk  (b)\n"
	require.Equal(t, want, Text(sample))
}

func TestMarkdown(t *testing.T) {
	md := Markdown(sample)
	require.True(t, strings.HasPrefix(md, "# Plan\n\n- Groceries\n  > milk\n"), md)
	require.Contains(t, md, "  - Milk `2025-12-22`\n")
	require.Contains(t, Markdown(nil), "Nothing planned")
}

func TestWrite_UnknownFormat(t *testing.T) {
	require.Error(t, Write(&bytes.Buffer{}, 1, "edn", false))
}

package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEffectiveModeAutoResolvesToMarkdownForBuffers(t *testing.T) {
	r := NewRenderer(&bytes.Buffer{}, &bytes.Buffer{}, ModeAuto)
	assert.Equal(t, ModeMarkdown, r.EffectiveMode())
}

func TestEffectiveModeExplicit(t *testing.T) {
	r := NewRenderer(&bytes.Buffer{}, &bytes.Buffer{}, ModeJSON)
	assert.Equal(t, ModeJSON, r.EffectiveMode())
}

func TestMarkdownTable(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, &bytes.Buffer{}, ModeMarkdown)
	r.Table([]string{"a", "b"}, [][]string{{"1", "2"}, {"3", "4"}})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "| a | b |", lines[0])
	assert.Equal(t, "| --- | --- |", lines[1])
	assert.Equal(t, "| 1 | 2 |", lines[2])
}

func TestTextTableRendersAllCells(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, &bytes.Buffer{}, ModeText)
	r.Table([]string{"col"}, [][]string{{"value"}})

	out := buf.String()
	// StyleLight upper-cases headers.
	assert.Contains(t, out, "COL")
	assert.Contains(t, out, "value")
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, &bytes.Buffer{}, ModeJSON)
	require.NoError(t, r.JSON(map[string]int{"rows": 3}))

	var got map[string]int
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, 3, got["rows"])
}

func TestHeaderMarkdown(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, &bytes.Buffer{}, ModeMarkdown)
	r.Header("Summary")
	assert.Equal(t, "## Summary\n\n", buf.String())
}

func TestCSVTable(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, &bytes.Buffer{}, ModeCSV)
	r.Table([]string{"category", "files"}, [][]string{{"deals", "2"}, {"Acme, Inc", "1"}})

	assert.Equal(t, "category,files\ndeals,2\n\"Acme, Inc\",1\n", buf.String())
}

func TestCSVSuppressesProse(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, &bytes.Buffer{}, ModeCSV)
	r.Header("Sources")
	r.Muted("Details in join_overlap.csv")
	assert.Empty(t, buf.String(), "CSV output should carry records only")
}

// Package output renders command results as terminal tables, markdown,
// JSON, or CSV depending on where the output is going.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Mode selects the rendering format.
type Mode string

const (
	// ModeAuto picks text for terminals and markdown for pipes.
	ModeAuto     Mode = "auto"
	ModeText     Mode = "text"
	ModeMarkdown Mode = "markdown"
	ModeJSON     Mode = "json"
	ModeCSV      Mode = "csv"
)

// Renderer writes command output in the selected mode.
type Renderer struct {
	out  io.Writer
	err  io.Writer
	mode Mode
	term *termenv.Output
}

// NewRenderer creates a renderer. ModeAuto is resolved against out.
func NewRenderer(out, err io.Writer, mode Mode) *Renderer {
	if mode == "" {
		mode = ModeAuto
	}
	return &Renderer{
		out:  out,
		err:  err,
		mode: mode,
		term: termenv.NewOutput(out),
	}
}

// EffectiveMode resolves ModeAuto: text when stdout is a terminal, markdown
// otherwise (agent- and pipeline-friendly).
func (r *Renderer) EffectiveMode() Mode {
	if r.mode != ModeAuto {
		return r.mode
	}
	if isTerminal(r.out) {
		return ModeText
	}
	return ModeMarkdown
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// Println writes a line to the output.
func (r *Renderer) Println(args ...any) {
	fmt.Fprintln(r.out, args...)
}

// Printf writes formatted text to the output.
func (r *Renderer) Printf(format string, args ...any) {
	fmt.Fprintf(r.out, format, args...)
}

// Errorf writes formatted text to the error stream.
func (r *Renderer) Errorf(format string, args ...any) {
	fmt.Fprintf(r.err, format, args...)
}

// Header writes a section header appropriate for the mode. CSV output
// carries no headers beyond the column row.
func (r *Renderer) Header(text string) {
	switch r.EffectiveMode() {
	case ModeCSV:
	case ModeMarkdown:
		fmt.Fprintf(r.out, "## %s\n\n", text)
	default:
		fmt.Fprintln(r.out, r.term.String(text).Bold().String())
	}
}

// Muted writes de-emphasized text. Suppressed in CSV mode.
func (r *Renderer) Muted(text string) {
	switch r.EffectiveMode() {
	case ModeCSV:
	case ModeMarkdown:
		fmt.Fprintf(r.out, "_%s_\n", text)
	default:
		fmt.Fprintln(r.out, r.term.String(text).Faint().String())
	}
}

// Table renders headers and rows as a styled table (text), markdown pipes,
// or CSV records.
func (r *Renderer) Table(headers []string, rows [][]string) {
	switch r.EffectiveMode() {
	case ModeCSV:
		r.csvTable(headers, rows)
	case ModeMarkdown:
		r.markdownTable(headers, rows)
	default:
		r.prettyTable(headers, rows)
	}
}

func (r *Renderer) csvTable(headers []string, rows [][]string) {
	w := csv.NewWriter(r.out)
	_ = w.Write(headers)
	for _, row := range rows {
		_ = w.Write(row)
	}
	w.Flush()
}

func (r *Renderer) prettyTable(headers []string, rows [][]string) {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleLight)

	hdr := make(table.Row, len(headers))
	for i, h := range headers {
		hdr[i] = h
	}
	t.AppendHeader(hdr)
	for _, row := range rows {
		tr := make(table.Row, len(row))
		for i, v := range row {
			tr[i] = v
		}
		t.AppendRow(tr)
	}
	t.Render()
}

func (r *Renderer) markdownTable(headers []string, rows [][]string) {
	fmt.Fprintf(r.out, "| %s |\n", strings.Join(headers, " | "))
	seps := make([]string, len(headers))
	for i := range seps {
		seps[i] = "---"
	}
	fmt.Fprintf(r.out, "| %s |\n", strings.Join(seps, " | "))
	for _, row := range rows {
		fmt.Fprintf(r.out, "| %s |\n", strings.Join(row, " | "))
	}
}

// JSON writes v as indented JSON.
func (r *Renderer) JSON(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

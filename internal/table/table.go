// Package table provides the in-memory tabular data structure the pipeline
// operates on. All cell values are strings; a missing cell and a blank
// string are equivalent.
package table

import (
	"fmt"
	"strings"
)

// Table holds an ordered set of columns and string-typed rows.
type Table struct {
	cols   []string
	colIdx map[string]int
	rows   [][]string
}

// New creates an empty table with the given columns.
// Duplicate column names are an error.
func New(cols ...string) (*Table, error) {
	idx := make(map[string]int, len(cols))
	for i, c := range cols {
		if _, ok := idx[c]; ok {
			return nil, fmt.Errorf("duplicate column %q", c)
		}
		idx[c] = i
	}
	return &Table{
		cols:   append([]string(nil), cols...),
		colIdx: idx,
	}, nil
}

// MustNew is New for statically known column lists. It panics on error.
func MustNew(cols ...string) *Table {
	t, err := New(cols...)
	if err != nil {
		panic(err)
	}
	return t
}

// Columns returns the column names in order.
func (t *Table) Columns() []string {
	return append([]string(nil), t.cols...)
}

// NumRows returns the number of rows.
func (t *Table) NumRows() int {
	return len(t.rows)
}

// NumCols returns the number of columns.
func (t *Table) NumCols() int {
	return len(t.cols)
}

// HasColumn reports whether the table has a column with the given name.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.colIdx[name]
	return ok
}

// AppendRow appends a row. Short rows are padded with blanks; long rows are
// an error.
func (t *Table) AppendRow(row []string) error {
	if len(row) > len(t.cols) {
		return fmt.Errorf("row has %d cells, table has %d columns", len(row), len(t.cols))
	}
	r := make([]string, len(t.cols))
	copy(r, row)
	t.rows = append(t.rows, r)
	return nil
}

// Row returns the i-th row. The returned slice is shared; callers must not
// modify it.
func (t *Table) Row(i int) []string {
	return t.rows[i]
}

// Cell returns the value at row i in the named column, or "" if the column
// does not exist.
func (t *Table) Cell(i int, col string) string {
	j, ok := t.colIdx[col]
	if !ok {
		return ""
	}
	return t.rows[i][j]
}

// SetCell sets the value at row i in the named column.
func (t *Table) SetCell(i int, col, val string) error {
	j, ok := t.colIdx[col]
	if !ok {
		return fmt.Errorf("no column %q", col)
	}
	t.rows[i][j] = val
	return nil
}

// Column returns all values of the named column in row order.
func (t *Table) Column(name string) ([]string, error) {
	j, ok := t.colIdx[name]
	if !ok {
		return nil, fmt.Errorf("no column %q", name)
	}
	out := make([]string, len(t.rows))
	for i, r := range t.rows {
		out[i] = r[j]
	}
	return out, nil
}

// UniqueNonBlank returns the distinct trimmed non-blank values of a column,
// in first-seen order.
func (t *Table) UniqueNonBlank(name string) ([]string, error) {
	vals, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(vals))
	var out []string
	for _, v := range vals {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out, nil
}

// AddColumn appends a new column filled with the given value.
func (t *Table) AddColumn(name, fill string) error {
	if _, ok := t.colIdx[name]; ok {
		return fmt.Errorf("column %q already exists", name)
	}
	t.colIdx[name] = len(t.cols)
	t.cols = append(t.cols, name)
	for i := range t.rows {
		t.rows[i] = append(t.rows[i], fill)
	}
	return nil
}

// TrimHeaders trims surrounding whitespace from every column name.
func (t *Table) TrimHeaders() {
	for i, c := range t.cols {
		trimmed := strings.TrimSpace(c)
		if trimmed == c {
			continue
		}
		delete(t.colIdx, c)
		t.cols[i] = trimmed
		t.colIdx[trimmed] = i
	}
}

// TrimColumn trims surrounding whitespace from every value of a column.
func (t *Table) TrimColumn(name string) error {
	j, ok := t.colIdx[name]
	if !ok {
		return fmt.Errorf("no column %q", name)
	}
	for i := range t.rows {
		t.rows[i][j] = strings.TrimSpace(t.rows[i][j])
	}
	return nil
}

// Prefix renames every column to prefix+name, skipping columns that already
// carry the prefix.
func (t *Table) Prefix(prefix string) {
	idx := make(map[string]int, len(t.cols))
	for i, c := range t.cols {
		if !strings.HasPrefix(c, prefix) {
			c = prefix + c
			t.cols[i] = c
		}
		idx[c] = i
	}
	t.colIdx = idx
}

// Rename renames a column in place.
func (t *Table) Rename(from, to string) error {
	j, ok := t.colIdx[from]
	if !ok {
		return fmt.Errorf("no column %q", from)
	}
	if _, ok := t.colIdx[to]; ok && to != from {
		return fmt.Errorf("column %q already exists", to)
	}
	delete(t.colIdx, from)
	t.cols[j] = to
	t.colIdx[to] = j
	return nil
}

// DropColumns removes the named columns. Missing names are ignored.
func (t *Table) DropColumns(names ...string) {
	drop := make(map[string]struct{}, len(names))
	for _, n := range names {
		drop[n] = struct{}{}
	}
	var kept []int
	for j, c := range t.cols {
		if _, ok := drop[c]; !ok {
			kept = append(kept, j)
		}
	}
	t.project(kept)
}

// Select reorders the table to exactly the given columns.
// Every requested column must exist.
func (t *Table) Select(cols []string) error {
	kept := make([]int, 0, len(cols))
	for _, c := range cols {
		j, ok := t.colIdx[c]
		if !ok {
			return fmt.Errorf("no column %q", c)
		}
		kept = append(kept, j)
	}
	t.project(kept)
	return nil
}

// project rebuilds the table keeping only the columns at the given source
// indices, in that order.
func (t *Table) project(kept []int) {
	cols := make([]string, len(kept))
	idx := make(map[string]int, len(kept))
	for i, j := range kept {
		cols[i] = t.cols[j]
		idx[cols[i]] = i
	}
	for ri, r := range t.rows {
		nr := make([]string, len(kept))
		for i, j := range kept {
			nr[i] = r[j]
		}
		t.rows[ri] = nr
	}
	t.cols = cols
	t.colIdx = idx
}

// Dedupe removes rows that are exact duplicates of an earlier row.
func (t *Table) Dedupe() {
	seen := make(map[string]struct{}, len(t.rows))
	out := t.rows[:0]
	for _, r := range t.rows {
		key := strings.Join(r, "\x1f")
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	t.rows = out
}

// DedupeBy keeps the first row for each distinct tuple of the given columns.
func (t *Table) DedupeBy(cols ...string) error {
	idxs := make([]int, 0, len(cols))
	for _, c := range cols {
		j, ok := t.colIdx[c]
		if !ok {
			return fmt.Errorf("no column %q", c)
		}
		idxs = append(idxs, j)
	}
	seen := make(map[string]struct{}, len(t.rows))
	out := t.rows[:0]
	for _, r := range t.rows {
		parts := make([]string, len(idxs))
		for i, j := range idxs {
			parts[i] = r[j]
		}
		key := strings.Join(parts, "\x1f")
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	t.rows = out
	return nil
}

// Union concatenates tables, aligning columns by name. Columns appear in
// first-seen order across the inputs; missing cells are blank. The result is
// de-duplicated across full rows.
func Union(tables ...*Table) (*Table, error) {
	if len(tables) == 0 {
		return nil, fmt.Errorf("union of zero tables")
	}
	var cols []string
	seen := make(map[string]struct{})
	for _, in := range tables {
		for _, c := range in.cols {
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			cols = append(cols, c)
		}
	}
	out, err := New(cols...)
	if err != nil {
		return nil, err
	}
	for _, in := range tables {
		for _, r := range in.rows {
			nr := make([]string, len(cols))
			for j, c := range in.cols {
				nr[out.colIdx[c]] = r[j]
			}
			out.rows = append(out.rows, nr)
		}
	}
	out.Dedupe()
	return out, nil
}

package table

import (
	"fmt"
	"strings"
)

// LeftJoin joins right onto t matching t[leftKey] == right[rightKey].
// Every left row appears at least once; left rows with no match get blank
// right-side cells, and a left row with n matches produces n output rows.
// Right columns that collide with existing left column names get the given
// suffix appended. Blank keys never match.
func (t *Table) LeftJoin(right *Table, leftKey, rightKey, suffix string) (*Table, error) {
	if _, ok := t.colIdx[leftKey]; !ok {
		return nil, fmt.Errorf("left table has no column %q", leftKey)
	}
	rk, ok := right.colIdx[rightKey]
	if !ok {
		return nil, fmt.Errorf("right table has no column %q", rightKey)
	}

	// Resolve output column names for the right side.
	rightCols := make([]string, len(right.cols))
	for j, c := range right.cols {
		if _, clash := t.colIdx[c]; clash {
			c += suffix
		}
		rightCols[j] = c
	}

	cols := make([]string, 0, len(t.cols)+len(rightCols))
	cols = append(cols, t.cols...)
	cols = append(cols, rightCols...)
	out, err := New(cols...)
	if err != nil {
		return nil, err
	}

	// Hash the right side on its key.
	matches := make(map[string][]int, right.NumRows())
	for i, r := range right.rows {
		key := strings.TrimSpace(r[rk])
		if key == "" {
			continue
		}
		matches[key] = append(matches[key], i)
	}

	lk := t.colIdx[leftKey]
	blanks := make([]string, len(right.cols))
	for _, lr := range t.rows {
		key := strings.TrimSpace(lr[lk])
		ms := matches[key]
		if key == "" || len(ms) == 0 {
			nr := make([]string, 0, len(cols))
			nr = append(nr, lr...)
			nr = append(nr, blanks...)
			out.rows = append(out.rows, nr)
			continue
		}
		for _, ri := range ms {
			nr := make([]string, 0, len(cols))
			nr = append(nr, lr...)
			nr = append(nr, right.rows[ri]...)
			out.rows = append(out.rows, nr)
		}
	}
	return out, nil
}

// ReorderGroups reorders columns as: front columns first, then the remaining
// columns grouped by prefix in the given prefix order, then provenance
// columns (those ending in one of the provenance suffixes) last. Columns
// matching none of the groups keep their relative order after the prefix
// groups. Front columns must exist.
func (t *Table) ReorderGroups(front []string, prefixes []string, provenanceSuffixes []string) error {
	inFront := make(map[string]struct{}, len(front))
	for _, c := range front {
		if _, ok := t.colIdx[c]; !ok {
			return fmt.Errorf("no column %q", c)
		}
		inFront[c] = struct{}{}
	}
	isProvenance := func(c string) bool {
		for _, s := range provenanceSuffixes {
			if strings.HasSuffix(c, s) {
				return true
			}
		}
		return false
	}

	ordered := append([]string(nil), front...)
	taken := make(map[string]struct{}, len(t.cols))
	for _, c := range front {
		taken[c] = struct{}{}
	}
	for _, p := range prefixes {
		for _, c := range t.cols {
			if _, ok := taken[c]; ok {
				continue
			}
			if strings.HasPrefix(c, p) && !isProvenance(c) {
				ordered = append(ordered, c)
				taken[c] = struct{}{}
			}
		}
	}
	// Ungrouped, non-provenance leftovers.
	for _, c := range t.cols {
		if _, ok := taken[c]; ok {
			continue
		}
		if !isProvenance(c) {
			ordered = append(ordered, c)
			taken[c] = struct{}{}
		}
	}
	// Provenance columns last.
	for _, c := range t.cols {
		if _, ok := taken[c]; !ok {
			ordered = append(ordered, c)
		}
	}
	return t.Select(ordered)
}

// DropBlankColumns removes columns whose every value is blank after trimming
// and columns whose name starts with "Unnamed" (spillover from ragged
// spreadsheet headers). It returns the names of the dropped columns.
func (t *Table) DropBlankColumns() []string {
	var dropped []string
	for _, c := range t.cols {
		base := c
		if i := strings.LastIndex(c, "."); i >= 0 {
			base = c[i+1:]
		}
		if strings.HasPrefix(base, "Unnamed") {
			dropped = append(dropped, c)
			continue
		}
		j := t.colIdx[c]
		blank := true
		for _, r := range t.rows {
			if strings.TrimSpace(r[j]) != "" {
				blank = false
				break
			}
		}
		if blank {
			dropped = append(dropped, c)
		}
	}
	if len(dropped) > 0 {
		t.DropColumns(dropped...)
	}
	return dropped
}

package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeftJoinKeepsUnmatchedRows(t *testing.T) {
	left := MustNew("map.Deal ID", "map.Investor ID")
	require.NoError(t, left.AppendRow([]string{"d1", "i1"}))
	require.NoError(t, left.AppendRow([]string{"d2", "i2"}))

	right := MustNew("deals.Deal ID", "deals.Size")
	require.NoError(t, right.AppendRow([]string{"d1", "10"}))

	out, err := left.LeftJoin(right, "map.Deal ID", "deals.Deal ID", "_p2")
	require.NoError(t, err)
	require.Equal(t, 2, out.NumRows())
	assert.Equal(t, "10", out.Cell(0, "deals.Size"))
	assert.Equal(t, "", out.Cell(1, "deals.Size"))
	// The right key column is retained, as pandas merge does.
	assert.Equal(t, "d1", out.Cell(0, "deals.Deal ID"))
}

func TestLeftJoinMultipliesOnManyMatches(t *testing.T) {
	left := MustNew("k")
	require.NoError(t, left.AppendRow([]string{"a"}))

	right := MustNew("rk", "v")
	require.NoError(t, right.AppendRow([]string{"a", "1"}))
	require.NoError(t, right.AppendRow([]string{"a", "2"}))

	out, err := left.LeftJoin(right, "k", "rk", "_p2")
	require.NoError(t, err)
	require.Equal(t, 2, out.NumRows())
	assert.Equal(t, "1", out.Cell(0, "v"))
	assert.Equal(t, "2", out.Cell(1, "v"))
}

func TestLeftJoinBlankKeysNeverMatch(t *testing.T) {
	left := MustNew("k")
	require.NoError(t, left.AppendRow([]string{""}))

	right := MustNew("rk", "v")
	require.NoError(t, right.AppendRow([]string{"", "ghost"}))

	out, err := left.LeftJoin(right, "k", "rk", "_p2")
	require.NoError(t, err)
	require.Equal(t, 1, out.NumRows())
	assert.Equal(t, "", out.Cell(0, "v"))
}

func TestLeftJoinSuffixesCollidingColumns(t *testing.T) {
	left := MustNew("k", "name")
	require.NoError(t, left.AppendRow([]string{"a", "left"}))

	right := MustNew("k2", "name")
	require.NoError(t, right.AppendRow([]string{"a", "right"}))

	out, err := left.LeftJoin(right, "k", "k2", "_p2")
	require.NoError(t, err)
	assert.Equal(t, "left", out.Cell(0, "name"))
	assert.Equal(t, "right", out.Cell(0, "name_p2"))
}

func TestLeftJoinMissingKeyColumn(t *testing.T) {
	left := MustNew("k")
	right := MustNew("rk")

	_, err := left.LeftJoin(right, "nope", "rk", "_p2")
	require.Error(t, err)
	_, err = left.LeftJoin(right, "k", "nope", "_p2")
	require.Error(t, err)
}

func TestReorderGroups(t *testing.T) {
	tbl := MustNew(
		"inv.Investor ID",
		"deals.file_source",
		"deals.Deal ID",
		"deals.Company ID",
		"deals.Size",
		"comp.Name",
		"inv.file_source_type",
		"deals.Investor ID",
	)
	require.NoError(t, tbl.AppendRow([]string{"i", "f", "d", "c", "s", "n", "t", "iv"}))

	front := []string{"deals.Deal ID", "deals.Company ID", "deals.Investor ID"}
	err := tbl.ReorderGroups(front,
		[]string{"deals.", "inv.", "comp."},
		[]string{".file_source", ".file_source_type"})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"deals.Deal ID",
		"deals.Company ID",
		"deals.Investor ID",
		"deals.Size",
		"inv.Investor ID",
		"comp.Name",
		"deals.file_source",
		"inv.file_source_type",
	}, tbl.Columns())
}

func TestReorderGroupsMissingFrontColumn(t *testing.T) {
	tbl := MustNew("a")
	err := tbl.ReorderGroups([]string{"missing"}, nil, nil)
	require.Error(t, err)
}

func TestDropBlankColumns(t *testing.T) {
	tbl := MustNew("keep", "blank", "deals.Unnamed: 3")
	require.NoError(t, tbl.AppendRow([]string{"v", "  ", "x"}))
	require.NoError(t, tbl.AppendRow([]string{"w", "", "y"}))

	dropped := tbl.DropBlankColumns()
	assert.ElementsMatch(t, []string{"blank", "deals.Unnamed: 3"}, dropped)
	assert.Equal(t, []string{"keep"}, tbl.Columns())
}

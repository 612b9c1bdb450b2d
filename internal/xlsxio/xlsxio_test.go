package xlsxio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ManeeGit/DataWithoutPeople/internal/table"
)

// writeWorkbook creates an xlsx file with the given rows on Sheet1.
func writeWorkbook(t *testing.T, path string, rows [][]interface{}) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	require.NoError(t, f.SaveAs(path))
}

func TestDetectHeaderRowSkipsBanner(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deals.xlsx")
	writeWorkbook(t, path, [][]interface{}{
		{"PitchBook Search Results"},
		{},
		{"Deal ID", "Deal Size"},
		{"d1", "100"},
	})

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	hdr, err := DetectHeaderRow(f, "Sheet1", []string{"Deal ID"}, 20)
	require.NoError(t, err)
	assert.Equal(t, 2, hdr)
}

func TestDetectHeaderRowNotFound(t *testing.T) {
	path := filepath.Join(t.TempDir(), "noise.xlsx")
	writeWorkbook(t, path, [][]interface{}{
		{"nothing", "useful"},
	})

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	_, err = DetectHeaderRow(f, "Sheet1", []string{"Deal ID"}, 20)
	require.ErrorIs(t, err, ErrNoHeader)
}

func TestReadTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "investors.xlsx")
	writeWorkbook(t, path, [][]interface{}{
		{"export banner"},
		{"Investor ID ", "Investor Legal Name"},
		{"i1", "Acme Capital"},
		{"i2"},
	})

	tbl, err := ReadTable(path, []string{"Investor ID"}, 20)
	require.NoError(t, err)
	assert.Equal(t, []string{"Investor ID", "Investor Legal Name"}, tbl.Columns())
	require.Equal(t, 2, tbl.NumRows())
	assert.Equal(t, "Acme Capital", tbl.Cell(0, "Investor Legal Name"))
	// Short data rows are padded.
	assert.Equal(t, "", tbl.Cell(1, "Investor Legal Name"))
}

func TestReadTableMissingFile(t *testing.T) {
	_, err := ReadTable(filepath.Join(t.TempDir(), "nope.xlsx"), []string{"Deal ID"}, 20)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing file")
}

func TestDedupeHeader(t *testing.T) {
	got := dedupeHeader([]string{"ID", "", "Name", "Name", "ID"})
	assert.Equal(t, []string{"ID", "Unnamed: 1", "Name", "Name.1", "ID.1"}, got)
}

func TestWriteTableRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.xlsx")

	tbl := table.MustNew("Deal ID", "Deal Size")
	require.NoError(t, tbl.AppendRow([]string{"d1", "100"}))
	require.NoError(t, tbl.AppendRow([]string{"d2", ""}))

	require.NoError(t, WriteTable(path, tbl))

	back, err := ReadTable(path, []string{"Deal ID"}, 20)
	require.NoError(t, err)
	assert.Equal(t, []string{"Deal ID", "Deal Size"}, back.Columns())
	require.Equal(t, 2, back.NumRows())
	assert.Equal(t, "100", back.Cell(0, "Deal Size"))
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overlap.csv")

	tbl := table.MustNew("investor_col", "common")
	require.NoError(t, tbl.AppendRow([]string{"inv.Investor ID", "42"}))

	require.NoError(t, WriteCSV(path, tbl))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "investor_col,common\ninv.Investor ID,42\n", string(data))
}

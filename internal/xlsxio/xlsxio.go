// Package xlsxio reads and writes the workbook and CSV files the pipeline
// consumes and produces. PitchBook exports carry banner rows above the real
// header, so reading starts with a header scan.
package xlsxio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ManeeGit/DataWithoutPeople/internal/table"
)

// ErrNoHeader indicates that no row in the scanned range contained any of
// the expected identifier columns.
var ErrNoHeader = errors.New("no header row found")

// DetectHeaderRow scans the first maxScan rows of a sheet and returns the
// 0-based index of the first row whose trimmed cells contain any of idCols.
func DetectHeaderRow(f *excelize.File, sheet string, idCols []string, maxScan int) (int, error) {
	rows, err := f.Rows(sheet)
	if err != nil {
		return 0, fmt.Errorf("reading sheet %q: %w", sheet, err)
	}
	defer rows.Close()

	for i := 0; i < maxScan && rows.Next(); i++ {
		cells, err := rows.Columns()
		if err != nil {
			return 0, fmt.Errorf("reading row %d of sheet %q: %w", i+1, sheet, err)
		}
		tokens := make(map[string]struct{}, len(cells))
		for _, c := range cells {
			if c = strings.TrimSpace(c); c != "" {
				tokens[c] = struct{}{}
			}
		}
		for _, want := range idCols {
			if _, ok := tokens[want]; ok {
				return i, nil
			}
		}
	}
	return 0, fmt.Errorf("%w: none of %v in first %d rows", ErrNoHeader, idCols, maxScan)
}

// ReadTable reads the first sheet of the workbook at path into a table.
// The header row is located by scanning for idCols; rows above it are
// discarded, rows below become data. Data rows shorter than the header
// are padded with blanks.
func ReadTable(path string, idCols []string, maxScan int) (*table.Table, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("missing file: %s", path)
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%s has no sheets", path)
	}
	sheet := sheets[0]

	hdr, err := DetectHeaderRow(f, sheet, idCols, maxScan)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	rows, err := f.Rows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	defer rows.Close()

	// Skip banner rows above the header.
	for i := 0; i <= hdr; i++ {
		if !rows.Next() {
			return nil, fmt.Errorf("%s: sheet shorter than detected header row", path)
		}
	}
	header, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("reading header of %s: %w", path, err)
	}
	header = dedupeHeader(header)

	tbl, err := table.New(header...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	for rows.Next() {
		cells, err := rows.Columns()
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		if len(cells) > len(header) {
			cells = cells[:len(header)]
		}
		if err := tbl.AppendRow(cells); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	tbl.TrimHeaders()
	return tbl, nil
}

// Probe returns the detected header row and the number of data rows below
// it, without materializing the table.
func Probe(path string, idCols []string, maxScan int) (headerRow, dataRows int, err error) {
	if _, err := os.Stat(path); err != nil {
		return 0, 0, fmt.Errorf("missing file: %s", path)
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return 0, 0, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return 0, 0, fmt.Errorf("%s has no sheets", path)
	}
	hdr, err := DetectHeaderRow(f, sheets[0], idCols, maxScan)
	if err != nil {
		return 0, 0, fmt.Errorf("%s: %w", path, err)
	}

	rows, err := f.Rows(sheets[0])
	if err != nil {
		return 0, 0, fmt.Errorf("reading %s: %w", path, err)
	}
	defer rows.Close()
	n := 0
	for rows.Next() {
		n++
	}
	dataRows = n - hdr - 1
	if dataRows < 0 {
		dataRows = 0
	}
	return hdr, dataRows, nil
}

// dedupeHeader renames blank and repeated header cells the way spreadsheet
// imports conventionally do: blanks become "Unnamed: <col>", repeats get a
// ".<n>" suffix.
func dedupeHeader(header []string) []string {
	out := make([]string, len(header))
	seen := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("Unnamed: %d", i)
		}
		if n, ok := seen[h]; ok {
			seen[h] = n + 1
			h = fmt.Sprintf("%s.%d", h, n)
		}
		seen[h] = seen[h] + 1
		out[i] = h
	}
	return out
}

// WriteTable writes a table to a new workbook at path, sheet "Sheet1",
// header first.
func WriteTable(path string, tbl *table.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	sw, err := f.NewStreamWriter("Sheet1")
	if err != nil {
		return fmt.Errorf("creating stream writer: %w", err)
	}

	cols := tbl.Columns()
	hdr := make([]interface{}, len(cols))
	for i, c := range cols {
		hdr[i] = c
	}
	cell, _ := excelize.CoordinatesToCellName(1, 1)
	if err := sw.SetRow(cell, hdr); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i := 0; i < tbl.NumRows(); i++ {
		row := tbl.Row(i)
		vals := make([]interface{}, len(row))
		for j, v := range row {
			vals[j] = v
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := sw.SetRow(cell, vals); err != nil {
			return fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flushing rows: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}

// WriteCSV writes a table as CSV, header first.
func WriteCSV(path string, tbl *table.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(tbl.Columns()); err != nil {
		f.Close()
		return fmt.Errorf("writing header: %w", err)
	}
	for i := 0; i < tbl.NumRows(); i++ {
		if err := w.Write(tbl.Row(i)); err != nil {
			f.Close()
			return fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flushing %s: %w", path, err)
	}
	return f.Close()
}

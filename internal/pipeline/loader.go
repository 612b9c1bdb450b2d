package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/ManeeGit/DataWithoutPeople/internal/table"
	"github.com/ManeeGit/DataWithoutPeople/internal/xlsxio"
)

// ErrNoInputs indicates a category whose patterns matched no files.
var ErrNoInputs = errors.New("no input files")

// SourceInfo describes one discovered input workbook.
type SourceInfo struct {
	Category  string
	Path      string
	HeaderRow int // 0-based, -1 when detection failed
	Rows      int
}

// discoverCategory resolves the category's glob patterns against the input
// directory. The result is sorted and de-duplicated.
func discoverCategory(inputDir string, cat Category) ([]string, error) {
	seen := make(map[string]struct{})
	var files []string
	for _, pat := range cat.Patterns {
		matches, err := filepath.Glob(filepath.Join(inputDir, pat))
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q for category %s: %w", pat, cat.Name, err)
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w for category %s (patterns %v in %s)", ErrNoInputs, cat.Name, cat.Patterns, inputDir)
	}
	sort.Strings(files)
	return files, nil
}

// loadCategory loads every file of a category, prefixes columns, attaches
// provenance, unions the per-file tables, and de-duplicates rows.
// It returns the merged table and per-file row counts keyed by path.
func (e *Engine) loadCategory(ctx context.Context, cat Category, files []string) (*table.Table, map[string]int, error) {
	var tables []*table.Table
	fileRows := make(map[string]int, len(files))

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		tbl, err := xlsxio.ReadTable(path, cat.IDColumns, e.headerScan)
		if err != nil {
			return nil, nil, fmt.Errorf("loading category %s: %w", cat.Name, err)
		}
		if len(cat.UseColumns) > 0 {
			if err := tbl.Select(cat.UseColumns); err != nil {
				return nil, nil, fmt.Errorf("loading category %s from %s: %w", cat.Name, path, err)
			}
			tbl.Dedupe()
		}
		if err := tbl.AddColumn("file_source", filepath.Base(path)); err != nil {
			return nil, nil, fmt.Errorf("loading category %s: %w", cat.Name, err)
		}
		if err := tbl.AddColumn("file_source_type", cat.Name); err != nil {
			return nil, nil, fmt.Errorf("loading category %s: %w", cat.Name, err)
		}
		tbl.Prefix(cat.Prefix)

		fileRows[path] = tbl.NumRows()
		e.logger.Debug("loaded workbook",
			slog.String("category", cat.Name),
			slog.String("file", filepath.Base(path)),
			slog.Int("rows", tbl.NumRows()))
		tables = append(tables, tbl)
	}

	merged, err := table.Union(tables...)
	if err != nil {
		return nil, nil, fmt.Errorf("combining category %s: %w", cat.Name, err)
	}

	// Join keys are matched on trimmed values downstream; trim them once here.
	for _, id := range cat.IDColumns {
		col := cat.Prefix + id
		if merged.HasColumn(col) {
			if err := merged.TrimColumn(col); err != nil {
				return nil, nil, err
			}
		}
	}
	return merged, fileRows, nil
}

// loadAll loads every category concurrently.
func (e *Engine) loadAll(ctx context.Context, discovered map[string][]string) (map[string]*table.Table, map[string]map[string]int, error) {
	g, gctx := errgroup.WithContext(ctx)
	results := make([]*table.Table, len(e.categories))
	counts := make([]map[string]int, len(e.categories))
	for i, cat := range e.categories {
		g.Go(func() error {
			tbl, fileRows, err := e.loadCategory(gctx, cat, discovered[cat.Name])
			if err != nil {
				return err
			}
			results[i] = tbl
			counts[i] = fileRows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	tables := make(map[string]*table.Table, len(e.categories))
	rows := make(map[string]map[string]int, len(e.categories))
	for i, cat := range e.categories {
		tables[cat.Name] = results[i]
		rows[cat.Name] = counts[i]
	}
	return tables, rows, nil
}

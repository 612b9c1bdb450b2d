// Package pipeline implements the PitchBook export consolidation pipeline:
// discover input workbooks, load and prefix each category, analyze join-key
// overlap, fuzzy-match investors to people, merge everything into one
// dataset, and write the merged and refined workbooks.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"time"

	"github.com/ManeeGit/DataWithoutPeople/internal/state"
	"github.com/ManeeGit/DataWithoutPeople/internal/table"
	"github.com/ManeeGit/DataWithoutPeople/internal/xlsxio"
)

// Default output file names.
const (
	DefaultMergedFile  = "final_merged_deals_companies_investors_people.xlsx"
	DefaultRefinedFile = "final_refined_deals_companies_investors_people.xlsx"
	DefaultOverlapCSV  = "join_overlap.csv"
)

// Stage names recorded in the state store.
const (
	StageDiscover    = "discover"
	StageLoad        = "load"
	StageOverlap     = "overlap"
	StageMatch       = "match"
	StageMerge       = "merge"
	StageCleanup     = "cleanup"
	StageWriteMerged = "write_merged"
	StageRefine      = "refine"
)

// Config holds engine configuration.
type Config struct {
	// InputDir is the directory searched for input workbooks.
	InputDir string
	// OutputDir receives the merged and refined workbooks.
	OutputDir string
	// MergedFile, RefinedFile, and OverlapCSV override the default output
	// file names.
	MergedFile  string
	RefinedFile string
	OverlapCSV  string
	// Threshold is the minimum token-sort score (0-100) for a fuzzy match.
	// Zero selects the default of 85.
	Threshold int
	// HeaderScan is how many leading rows to scan for the header.
	HeaderScan int
	// Environment is the current environment (dev, staging, prod).
	Environment string
	// StatePath is the path to the SQLite state database.
	StatePath string
	// Categories overrides the default category set (tests only).
	Categories []Category
	// Logger is the structured logger (optional, uses discard if nil).
	Logger *slog.Logger
}

// RunOptions control a single pipeline execution.
type RunOptions struct {
	// DryRun stops before writing any output files.
	DryRun bool
	// SkipRefine skips the refined output.
	SkipRefine bool
}

// CategoryResult summarizes one loaded category.
type CategoryResult struct {
	Files []string // basenames, sorted
	Rows  int      // after union and dedupe
}

// Result is the outcome of a pipeline run.
type Result struct {
	RunID      string
	Categories map[string]*CategoryResult
	Overlap    []OverlapRow

	MatchedNames int
	TotalNames   int

	InvestorRows      int
	UniqueInvestorIDs int

	MergedRows  int
	MergedCols  int
	RefinedRows int
	RefinedCols int

	DroppedColumns []string

	MergedPath  string
	RefinedPath string
	OverlapPath string

	Elapsed time.Duration
}

// Engine orchestrates the pipeline stages.
type Engine struct {
	cfg        Config
	categories []Category
	headerScan int
	logger     *slog.Logger
	store      state.Store
}

// New creates an engine and opens its state store.
func New(cfg Config) (*Engine, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	cats := cfg.Categories
	if len(cats) == 0 {
		cats = DefaultCategories()
	}
	if cfg.HeaderScan <= 0 {
		cfg.HeaderScan = 20
	}
	if cfg.Threshold <= 0 {
		cfg.Threshold = 85
	}
	if cfg.MergedFile == "" {
		cfg.MergedFile = DefaultMergedFile
	}
	if cfg.RefinedFile == "" {
		cfg.RefinedFile = DefaultRefinedFile
	}
	if cfg.OverlapCSV == "" {
		cfg.OverlapCSV = DefaultOverlapCSV
	}
	if cfg.Environment == "" {
		cfg.Environment = "dev"
	}
	if cfg.StatePath == "" {
		cfg.StatePath = ":memory:"
	}

	store := state.NewSQLiteStore(logger)
	if err := store.Open(cfg.StatePath); err != nil {
		return nil, fmt.Errorf("failed to open state store: %w", err)
	}
	if err := store.Migrate(); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to migrate state store: %w", err)
	}

	logger.Debug("initializing engine",
		slog.String("input_dir", cfg.InputDir),
		slog.String("environment", cfg.Environment),
		slog.Int("threshold", cfg.Threshold))

	return &Engine{
		cfg:        cfg,
		categories: cats,
		headerScan: cfg.HeaderScan,
		logger:     logger,
		store:      store,
	}, nil
}

// Close releases the engine's resources.
func (e *Engine) Close() error {
	return e.store.Close()
}

// Store exposes the state store for the history command.
func (e *Engine) Store() state.Store {
	return e.store
}

// Discover resolves every category's patterns and probes each workbook for
// its header row and row count. Used by the sources command; does not
// record a run.
func (e *Engine) Discover() ([]SourceInfo, error) {
	var out []SourceInfo
	for _, cat := range e.categories {
		files, err := discoverCategory(e.cfg.InputDir, cat)
		if err != nil {
			return nil, err
		}
		for _, path := range files {
			info := SourceInfo{Category: cat.Name, Path: path, HeaderRow: -1}
			if hdr, rows, err := xlsxio.Probe(path, cat.IDColumns, e.headerScan); err == nil {
				info.HeaderRow = hdr
				info.Rows = rows
			}
			out = append(out, info)
		}
	}
	return out, nil
}

// Run executes the full pipeline and records it in the state store.
func (e *Engine) Run(ctx context.Context, opts RunOptions) (*Result, error) {
	run, err := e.store.CreateRun(e.cfg.Environment)
	if err != nil {
		return nil, err
	}

	res, err := e.run(ctx, run.ID, opts)
	if err != nil {
		_ = e.store.CompleteRun(run.ID, state.RunStatusFailed, err.Error())
		return nil, err
	}
	if err := e.store.CompleteRun(run.ID, state.RunStatusCompleted, ""); err != nil {
		return nil, err
	}
	return res, nil
}

// Overlap loads the investor and people categories and computes the
// join-key overlap report without running the rest of the pipeline.
func (e *Engine) Overlap(ctx context.Context) ([]OverlapRow, error) {
	var inv, ppl *table.Table
	for _, cat := range e.categories {
		if cat.Name != CategoryInvestors && cat.Name != CategoryPeople {
			continue
		}
		files, err := discoverCategory(e.cfg.InputDir, cat)
		if err != nil {
			return nil, err
		}
		tbl, _, err := e.loadCategory(ctx, cat, files)
		if err != nil {
			return nil, err
		}
		if cat.Name == CategoryInvestors {
			inv = tbl
		} else {
			ppl = tbl
		}
	}
	if inv == nil || ppl == nil {
		return nil, fmt.Errorf("overlap requires both %s and %s categories", CategoryInvestors, CategoryPeople)
	}
	return computeOverlap(inv, ppl)
}

func (e *Engine) run(ctx context.Context, runID string, opts RunOptions) (*Result, error) {
	started := time.Now()
	res := &Result{
		RunID:      runID,
		Categories: make(map[string]*CategoryResult, len(e.categories)),
	}

	// discover
	discovered := make(map[string][]string, len(e.categories))
	err := e.stage(ctx, runID, StageDiscover, func() (int64, error) {
		total := 0
		for _, cat := range e.categories {
			files, err := discoverCategory(e.cfg.InputDir, cat)
			if err != nil {
				return 0, err
			}
			discovered[cat.Name] = files
			total += len(files)
		}
		return int64(total), nil
	})
	if err != nil {
		return nil, err
	}

	// load
	var tables map[string]*table.Table
	err = e.stage(ctx, runID, StageLoad, func() (int64, error) {
		var rows map[string]map[string]int
		var err error
		tables, rows, err = e.loadAll(ctx, discovered)
		if err != nil {
			return 0, err
		}
		var total int64
		for _, cat := range e.categories {
			tbl := tables[cat.Name]
			cr := &CategoryResult{Rows: tbl.NumRows()}
			for path, n := range rows[cat.Name] {
				cr.Files = append(cr.Files, filepath.Base(path))
				if err := e.store.RecordSourceFile(runID, cat.Name, path, int64(n)); err != nil {
					return 0, err
				}
			}
			sort.Strings(cr.Files)
			res.Categories[cat.Name] = cr
			total += int64(tbl.NumRows())
		}
		return total, nil
	})
	if err != nil {
		return nil, err
	}

	investors := tables[CategoryInvestors]
	people := tables[CategoryPeople]
	res.InvestorRows = investors.NumRows()
	if ids, err := investors.UniqueNonBlank(colInvID); err == nil {
		res.UniqueInvestorIDs = len(ids)
	}

	// overlap
	err = e.stage(ctx, runID, StageOverlap, func() (int64, error) {
		rows, err := computeOverlap(investors, people)
		if err != nil {
			return 0, err
		}
		res.Overlap = rows
		if !opts.DryRun {
			res.OverlapPath = filepath.Join(e.cfg.OutputDir, e.cfg.OverlapCSV)
			if err := xlsxio.WriteCSV(res.OverlapPath, OverlapTable(rows)); err != nil {
				return 0, err
			}
		}
		return int64(len(rows)), nil
	})
	if err != nil {
		return nil, err
	}

	// match
	err = e.stage(ctx, runID, StageMatch, func() (int64, error) {
		matched, total, err := attachFuzzyColumn(investors, people, e.cfg.Threshold)
		if err != nil {
			return 0, err
		}
		res.MatchedNames, res.TotalNames = matched, total
		e.logger.Info("fuzzy matching done",
			slog.Int("matched", matched),
			slog.Int("names", total),
			slog.Int("threshold", e.cfg.Threshold))
		return int64(matched), nil
	})
	if err != nil {
		return nil, err
	}

	// merge
	var merged *table.Table
	err = e.stage(ctx, runID, StageMerge, func() (int64, error) {
		var err error
		merged, err = mergeAll(tables)
		if err != nil {
			return 0, err
		}
		return int64(merged.NumRows()), nil
	})
	if err != nil {
		return nil, err
	}

	// cleanup + reorder
	err = e.stage(ctx, runID, StageCleanup, func() (int64, error) {
		if err := cleanupMerged(merged); err != nil {
			return 0, err
		}
		if err := reorderMerged(merged); err != nil {
			return 0, err
		}
		return int64(merged.NumRows()), nil
	})
	if err != nil {
		return nil, err
	}
	res.MergedRows = merged.NumRows()
	res.MergedCols = merged.NumCols()

	if opts.DryRun {
		e.logger.Info("dry run, skipping outputs")
		res.Elapsed = time.Since(started)
		return res, nil
	}

	// write merged
	err = e.stage(ctx, runID, StageWriteMerged, func() (int64, error) {
		res.MergedPath = filepath.Join(e.cfg.OutputDir, e.cfg.MergedFile)
		if err := xlsxio.WriteTable(res.MergedPath, merged); err != nil {
			return 0, err
		}
		return int64(merged.NumRows()), nil
	})
	if err != nil {
		return nil, err
	}

	// refine
	if !opts.SkipRefine {
		err = e.stage(ctx, runID, StageRefine, func() (int64, error) {
			res.DroppedColumns = merged.DropBlankColumns()
			res.RefinedRows = merged.NumRows()
			res.RefinedCols = merged.NumCols()
			res.RefinedPath = filepath.Join(e.cfg.OutputDir, e.cfg.RefinedFile)
			if err := xlsxio.WriteTable(res.RefinedPath, merged); err != nil {
				return 0, err
			}
			return int64(merged.NumRows()), nil
		})
		if err != nil {
			return nil, err
		}
	}

	res.Elapsed = time.Since(started)
	e.logger.Info("pipeline completed",
		slog.String("run", runID),
		slog.Int("merged_rows", res.MergedRows),
		slog.Duration("elapsed", res.Elapsed))
	return res, nil
}

// stage runs fn between StartStage and CompleteStage bookkeeping. A
// canceled context stops the pipeline before the stage starts.
func (e *Engine) stage(ctx context.Context, runID, name string, fn func() (int64, error)) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	stageID, err := e.store.StartStage(runID, name)
	if err != nil {
		return err
	}
	rows, err := fn()
	if err != nil {
		_ = e.store.CompleteStage(stageID, state.StageStatusFailed, 0, err.Error())
		return fmt.Errorf("%s: %w", name, err)
	}
	if err := e.store.CompleteStage(stageID, state.StageStatusSuccess, rows, ""); err != nil {
		return err
	}
	e.logger.Debug("stage completed", slog.String("stage", name), slog.Int64("rows", rows))
	return nil
}

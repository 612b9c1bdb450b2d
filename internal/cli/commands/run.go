package commands

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/ManeeGit/DataWithoutPeople/internal/cli/output"
	"github.com/ManeeGit/DataWithoutPeople/internal/pipeline"
)

// RunOptions holds options for the run command.
type RunOptions struct {
	DryRun     bool
	SkipRefine bool
}

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	opts := &RunOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the consolidation pipeline",
		Long: `Discover the input workbooks, merge deals, companies, investors, people,
and deal-investor mappings into one dataset, and write the merged and
refined workbooks.

Every run is recorded in the state database; see 'dwp history'.`,
		Example: `  # Merge the workbooks in the current directory
  dwp run

  # Validate inputs and report what would be produced, writing nothing
  dwp run --dry-run

  # Keep every column, even blank ones
  dwp run --skip-refine`,
		Aliases: []string{"merge"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRun(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Stop before writing output files")
	cmd.Flags().BoolVar(&opts.SkipRefine, "skip-refine", false, "Skip the refined output")

	return cmd
}

func runRun(cmd *cobra.Command, opts *RunOptions) error {
	cfg := getConfig()
	r := newRenderer(cmd, cfg)

	eng, err := createEngine(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = eng.Close() }()

	res, err := eng.Run(cmd.Context(), pipeline.RunOptions{
		DryRun:     opts.DryRun,
		SkipRefine: opts.SkipRefine,
	})
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(runJSON(res))
	}
	renderRunResult(r, res, opts)
	return nil
}

// runJSON is the machine-readable shape of a run result.
func runJSON(res *pipeline.Result) map[string]any {
	cats := make(map[string]any, len(res.Categories))
	for name, cr := range res.Categories {
		cats[name] = map[string]any{"files": cr.Files, "rows": cr.Rows}
	}
	return map[string]any{
		"run_id":              res.RunID,
		"categories":          cats,
		"matched_names":       res.MatchedNames,
		"total_names":         res.TotalNames,
		"investor_rows":       res.InvestorRows,
		"unique_investor_ids": res.UniqueInvestorIDs,
		"merged_rows":         res.MergedRows,
		"merged_cols":         res.MergedCols,
		"refined_rows":        res.RefinedRows,
		"refined_cols":        res.RefinedCols,
		"dropped_columns":     res.DroppedColumns,
		"merged_path":         res.MergedPath,
		"refined_path":        res.RefinedPath,
		"overlap_path":        res.OverlapPath,
		"elapsed_ms":          res.Elapsed.Milliseconds(),
	}
}

func renderRunResult(r *output.Renderer, res *pipeline.Result, opts *RunOptions) {
	r.Header("Sources")
	names := make([]string, 0, len(res.Categories))
	for name := range res.Categories {
		names = append(names, name)
	}
	sort.Strings(names)
	rows := make([][]string, 0, len(names))
	for _, name := range names {
		cr := res.Categories[name]
		rows = append(rows, []string{name, fmt.Sprintf("%d", len(cr.Files)), fmt.Sprintf("%d", cr.Rows)})
	}
	r.Table([]string{"category", "files", "rows"}, rows)
	r.Println()

	r.Header("Join key overlap")
	r.Table(overlapHeaders, overlapRows(res.Overlap))
	r.Println()

	r.Header("Summary")
	r.Printf("Fuzzy matches:       %d of %d investor names\n", res.MatchedNames, res.TotalNames)
	r.Printf("Investor rows:       %d (%d unique IDs)\n", res.InvestorRows, res.UniqueInvestorIDs)
	r.Printf("Merged rows:         %d (%d columns)\n", res.MergedRows, res.MergedCols)
	if opts.DryRun {
		r.Muted("Dry run: no files written")
	} else {
		if res.RefinedPath != "" {
			r.Printf("Refined rows:        %d (%d columns, %d dropped)\n",
				res.RefinedRows, res.RefinedCols, len(res.DroppedColumns))
		}
		r.Printf("Merged workbook:     %s\n", res.MergedPath)
		if res.RefinedPath != "" {
			r.Printf("Refined workbook:    %s\n", res.RefinedPath)
		}
		r.Printf("Overlap report:      %s\n", res.OverlapPath)
	}
	r.Printf("Completed in %s\n", res.Elapsed.Round(time.Millisecond))
}

package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ManeeGit/DataWithoutPeople/internal/cli/output"
	"github.com/ManeeGit/DataWithoutPeople/internal/pipeline"
	"github.com/ManeeGit/DataWithoutPeople/internal/xlsxio"
)

var overlapHeaders = []string{"investor_col", "people_col", "inv_unique", "ppl_unique", "common", "inv_pct", "ppl_pct"}

// NewOverlapCommand creates the overlap command.
func NewOverlapCommand() *cobra.Command {
	var csvPath string

	cmd := &cobra.Command{
		Use:   "overlap",
		Short: "Analyze join-key overlap between investors and people",
		Long: `Load the investor and people workbooks and measure how many exact values
each candidate join-key pair shares. A large overlap means the categories
can be joined directly; a small one means fuzzy name matching will carry
the join.`,
		Example: `  # Print the overlap table
  dwp overlap

  # Also write it as CSV
  dwp overlap --csv join_overlap.csv`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runOverlap(cmd, csvPath)
		},
	}

	cmd.Flags().StringVar(&csvPath, "csv", "", "Also write the report to this CSV file")

	return cmd
}

func runOverlap(cmd *cobra.Command, csvPath string) error {
	cfg := getConfig()
	r := newRenderer(cmd, cfg)

	eng, err := createEngine(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = eng.Close() }()

	rows, err := eng.Overlap(cmd.Context())
	if err != nil {
		return fmt.Errorf("overlap analysis failed: %w", err)
	}

	if csvPath != "" {
		if err := xlsxio.WriteCSV(csvPath, pipeline.OverlapTable(rows)); err != nil {
			return err
		}
	}

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(rows)
	}
	r.Header("Join key overlap")
	r.Table(overlapHeaders, overlapRows(rows))
	if csvPath != "" {
		r.Println()
		r.Muted("Details in " + csvPath)
	}
	return nil
}

func overlapRows(rows []pipeline.OverlapRow) [][]string {
	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		out = append(out, []string{
			row.InvestorColumn,
			row.PeopleColumn,
			fmt.Sprintf("%d", row.InvUnique),
			fmt.Sprintf("%d", row.PplUnique),
			fmt.Sprintf("%d", row.Common),
			fmt.Sprintf("%.1f%%", row.InvPct*100),
			fmt.Sprintf("%.1f%%", row.PplPct*100),
		})
	}
	return out
}

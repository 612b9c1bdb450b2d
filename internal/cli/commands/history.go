package commands

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/ManeeGit/DataWithoutPeople/internal/cli/output"
	"github.com/ManeeGit/DataWithoutPeople/internal/state"
)

// NewHistoryCommand creates the history command.
func NewHistoryCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent pipeline runs",
		Long:  `List recent runs from the state database, newest first.`,
		Example: `  dwp history
  dwp history --limit 5`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHistory(cmd, limit)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to show")

	return cmd
}

func runHistory(cmd *cobra.Command, limit int) error {
	cfg := getConfig()
	r := newRenderer(cmd, cfg)

	eng, err := createEngine(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = eng.Close() }()

	runs, err := eng.Store().ListRuns(limit)
	if err != nil {
		return err
	}

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(runs)
	}

	if len(runs) == 0 {
		r.Muted("No runs recorded yet")
		return nil
	}

	r.Header("Runs")
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			shortID(run.ID),
			run.Environment,
			string(run.Status),
			run.StartedAt.Local().Format(time.DateTime),
			runDuration(run),
			run.Error,
		})
	}
	r.Table([]string{"run", "env", "status", "started", "duration", "error"}, rows)
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func runDuration(run *state.Run) string {
	if run.CompletedAt == nil {
		return "-"
	}
	return run.CompletedAt.Sub(run.StartedAt).Round(time.Millisecond).String()
}

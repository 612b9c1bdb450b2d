package commands

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/ManeeGit/DataWithoutPeople/internal/cli/output"
	"github.com/ManeeGit/DataWithoutPeople/internal/pipeline"
)

// watchDebounce is how long to wait after the last workbook change before
// re-running the pipeline. Exports are often written in several bursts.
const watchDebounce = 500 * time.Millisecond

// WatchOptions holds options for the watch command.
type WatchOptions struct {
	SkipRefine bool
}

// NewWatchCommand creates the watch command.
func NewWatchCommand() *cobra.Command {
	opts := &WatchOptions{}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-run the pipeline when input workbooks change",
		Long: `Watch the input directory and re-run the consolidation pipeline whenever
a source workbook is added or modified. Output files written by the
pipeline itself are ignored. Press Ctrl+C to stop.`,
		Example: `  # Watch the current directory
  dwp watch

  # Watch a directory of exports and write elsewhere
  dwp watch --input-dir ./exports --output-dir ./out`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWatch(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.SkipRefine, "skip-refine", false, "Skip the refined output")

	return cmd
}

func runWatch(cmd *cobra.Command, opts *WatchOptions) error {
	cfg := getConfig()
	r := newRenderer(cmd, cfg)

	eng, err := createEngine(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = eng.Close() }()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(cfg.InputDir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", cfg.InputDir, err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Outputs land in the input directory when the two coincide; skip them
	// or every run would trigger the next.
	skip := map[string]struct{}{
		outputName(cfg.MergedFile, pipeline.DefaultMergedFile):   {},
		outputName(cfg.RefinedFile, pipeline.DefaultRefinedFile): {},
		outputName(cfg.OverlapCSV, pipeline.DefaultOverlapCSV):   {},
	}

	runOpts := pipeline.RunOptions{SkipRefine: opts.SkipRefine}
	watchRun(ctx, r, eng, runOpts)

	r.Println()
	r.Muted(fmt.Sprintf("Watching %s for workbook changes. Press Ctrl+C to stop.", cfg.InputDir))

	var debounce *time.Timer
	runs := make(chan string, 1)
	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			r.Println()
			r.Muted("Stopped.")
			return nil

		case name := <-runs:
			r.Println()
			r.Muted(fmt.Sprintf("Change detected: %s", name))
			watchRun(ctx, r, eng, runOpts)

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			base := filepath.Base(event.Name)
			if !isWorkbook(base) {
				continue
			}
			if _, ok := skip[base]; ok {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(watchDebounce, func() {
				select {
				case runs <- base:
				default:
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			r.Errorf("watch error: %v\n", err)
		}
	}
}

// watchRun runs the pipeline once and reports the outcome without stopping
// the watch loop on failure.
func watchRun(ctx context.Context, r *output.Renderer, eng *pipeline.Engine, opts pipeline.RunOptions) {
	res, err := eng.Run(ctx, opts)
	if err != nil {
		r.Errorf("run failed: %v\n", err)
		return
	}
	r.Printf("Merged %d rows (%d columns) in %s\n",
		res.MergedRows, res.MergedCols, res.Elapsed.Round(time.Millisecond))
}

// isWorkbook reports whether a file name looks like an Excel export,
// ignoring the temporary lock files Excel leaves behind.
func isWorkbook(name string) bool {
	if strings.HasPrefix(name, "~$") || strings.HasPrefix(name, ".") {
		return false
	}
	return strings.EqualFold(filepath.Ext(name), ".xlsx")
}

func outputName(configured, fallback string) string {
	if configured != "" {
		return filepath.Base(configured)
	}
	return fallback
}

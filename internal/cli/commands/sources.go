package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ManeeGit/DataWithoutPeople/internal/cli/output"
)

// NewSourcesCommand creates the sources command.
func NewSourcesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List the discovered input workbooks",
		Long: `Resolve every category's file patterns against the input directory and
probe each workbook for its header row and row count. Useful to verify
which files a run would pick up before running it.`,
		Example: `  dwp sources
  dwp sources --input-dir ./exports`,
		RunE: runSources,
	}
}

func runSources(cmd *cobra.Command, _ []string) error {
	cfg := getConfig()
	r := newRenderer(cmd, cfg)

	eng, err := createEngine(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = eng.Close() }()

	infos, err := eng.Discover()
	if err != nil {
		return err
	}

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(infos)
	}

	r.Header("Input workbooks")
	rows := make([][]string, 0, len(infos))
	for _, info := range infos {
		hdr := "?"
		if info.HeaderRow >= 0 {
			hdr = fmt.Sprintf("%d", info.HeaderRow+1) // 1-based for display
		}
		rows = append(rows, []string{
			info.Category,
			filepath.Base(info.Path),
			hdr,
			fmt.Sprintf("%d", info.Rows),
		})
	}
	r.Table([]string{"category", "file", "header row", "rows"}, rows)
	return nil
}

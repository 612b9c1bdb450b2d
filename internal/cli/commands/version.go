package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewVersionCommand creates the version command.
func NewVersionCommand(version, buildDate, gitCommit string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display dwp version and build information.`,
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "dwp v%s\n", version)
			if buildDate != "" && buildDate != "unknown" {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "built %s", buildDate)
				if gitCommit != "" && gitCommit != "unknown" {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), " (%s)", gitCommit)
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout())
			}
		},
	}
}

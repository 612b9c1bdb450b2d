// Package commands implements the dwp subcommands.
package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ManeeGit/DataWithoutPeople/internal/cli/config"
	"github.com/ManeeGit/DataWithoutPeople/internal/cli/output"
	"github.com/ManeeGit/DataWithoutPeople/internal/pipeline"
)

// getConfig returns the configuration loaded by the root command.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	// PersistentPreRunE always runs first; this is a safety net for tests
	// invoking a command function directly.
	cfg, _ := config.LoadConfig("", nil)
	return cfg
}

// newRenderer builds a renderer from the command's streams and the
// configured output format.
func newRenderer(cmd *cobra.Command, cfg *config.Config) *output.Renderer {
	return output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat))
}

// newLogger builds the CLI logger. Debug level when verbose.
func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// createEngine builds a pipeline engine from the configuration, creating
// the state and output directories as needed.
func createEngine(cfg *config.Config) (*pipeline.Engine, error) {
	if stateDir := filepath.Dir(cfg.StatePath); stateDir != "." && stateDir != "" {
		if err := os.MkdirAll(stateDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create state directory: %w", err)
		}
	}
	if cfg.OutputDir != "" && cfg.OutputDir != "." {
		if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	return pipeline.New(pipeline.Config{
		InputDir:    cfg.InputDir,
		OutputDir:   cfg.OutputDir,
		MergedFile:  cfg.MergedFile,
		RefinedFile: cfg.RefinedFile,
		OverlapCSV:  cfg.OverlapCSV,
		Threshold:   cfg.Threshold,
		HeaderScan:  cfg.HeaderScan,
		Environment: cfg.Environment,
		StatePath:   cfg.StatePath,
		Categories:  categoriesFromConfig(cfg),
		Logger:      newLogger(cfg.Verbose),
	})
}

// categoriesFromConfig merges category overrides from the config file onto
// the default category set. Unknown names define new categories.
func categoriesFromConfig(cfg *config.Config) []pipeline.Category {
	if len(cfg.Categories) == 0 {
		return nil // engine uses defaults
	}
	cats := pipeline.DefaultCategories()
	byName := make(map[string]int, len(cats))
	for i, c := range cats {
		byName[c.Name] = i
	}
	for _, o := range cfg.Categories {
		c := pipeline.Category{
			Name:       o.Name,
			Prefix:     o.Prefix,
			Patterns:   o.Patterns,
			IDColumns:  o.IDColumns,
			UseColumns: o.UseColumns,
		}
		if i, ok := byName[o.Name]; ok {
			if c.Prefix == "" {
				c.Prefix = cats[i].Prefix
			}
			cats[i] = c
			continue
		}
		if c.Prefix == "" {
			c.Prefix = o.Name + "."
		}
		cats = append(cats, c)
	}
	return cats
}

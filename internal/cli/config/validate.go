package config

import (
	"fmt"

	"github.com/ManeeGit/DataWithoutPeople/internal/match"
)

// outputFormats are the accepted renderer modes.
var outputFormats = []string{"auto", "text", "markdown", "json", "csv"}

// Validate checks the loaded configuration for values the pipeline cannot
// work with.
func Validate(cfg *Config) error {
	if cfg.Threshold < 0 || cfg.Threshold > 100 {
		return fmt.Errorf("threshold must be between 0 and 100, got %d", cfg.Threshold)
	}
	if cfg.HeaderScan < 1 {
		return fmt.Errorf("header_scan must be at least 1, got %d", cfg.HeaderScan)
	}
	if !validOutputFormat(cfg.OutputFormat) {
		msg := fmt.Sprintf("output must be one of auto|text|markdown|json|csv, got %q", cfg.OutputFormat)
		if suggestions := match.SuggestSimilar(cfg.OutputFormat, outputFormats, 2); len(suggestions) > 0 {
			msg += fmt.Sprintf(". Did you mean %q?", suggestions[0])
		}
		return fmt.Errorf("%s", msg)
	}
	for _, cat := range cfg.Categories {
		if cat.Name == "" {
			return fmt.Errorf("category override without a name")
		}
		if len(cat.Patterns) == 0 {
			return fmt.Errorf("category %s has no patterns", cat.Name)
		}
		if len(cat.IDColumns) == 0 {
			return fmt.Errorf("category %s has no id_columns", cat.Name)
		}
	}
	return nil
}

func validOutputFormat(format string) bool {
	for _, f := range outputFormats {
		if format == f {
			return true
		}
	}
	return false
}

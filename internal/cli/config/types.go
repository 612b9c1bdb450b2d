// Package config loads the CLI configuration from file, environment
// variables, and flags.
package config

// Config is the resolved tool configuration.
type Config struct {
	// InputDir is searched for input workbooks.
	InputDir string `koanf:"input_dir"`
	// OutputDir receives the merged and refined workbooks.
	OutputDir string `koanf:"output_dir"`
	// MergedFile / RefinedFile / OverlapCSV override output file names.
	MergedFile  string `koanf:"merged_file"`
	RefinedFile string `koanf:"refined_file"`
	OverlapCSV  string `koanf:"overlap_csv"`
	// StatePath is the SQLite run-history database.
	StatePath string `koanf:"state_path"`
	// Threshold is the fuzzy match cutoff (0-100).
	Threshold int `koanf:"threshold"`
	// HeaderScan is how many leading rows to scan for a header.
	HeaderScan int `koanf:"header_scan"`
	// Environment tags recorded runs (dev, staging, prod).
	Environment string `koanf:"environment"`
	// Verbose enables debug logging.
	Verbose bool `koanf:"verbose"`
	// OutputFormat selects the renderer mode (auto|text|markdown|json|csv).
	OutputFormat string `koanf:"output"`
	// Categories optionally overrides the input file patterns per category.
	Categories []CategoryConfig `koanf:"categories"`

	// ProjectRoot is the directory relative paths resolve against.
	ProjectRoot string `koanf:"-"`
}

// CategoryConfig overrides one input category.
type CategoryConfig struct {
	Name       string   `koanf:"name"`
	Prefix     string   `koanf:"prefix"`
	Patterns   []string `koanf:"patterns"`
	IDColumns  []string `koanf:"id_columns"`
	UseColumns []string `koanf:"use_columns"`
}

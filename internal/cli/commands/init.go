package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ManeeGit/DataWithoutPeople/internal/cli/output"
	"github.com/ManeeGit/DataWithoutPeople/internal/config"
)

// starterConfig is the shape written to dwp.yaml by init. Field order here
// is the order in the generated file.
type starterConfig struct {
	InputDir    string `yaml:"input_dir"`
	OutputDir   string `yaml:"output_dir"`
	Threshold   int    `yaml:"threshold"`
	HeaderScan  int    `yaml:"header_scan"`
	Environment string `yaml:"environment"`
}

// ignoreRules are appended to .gitignore so exports and generated
// workbooks never end up in version control.
var ignoreRules = []string{"*.xlsx", "*.csv", ".dwp/"}

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a dwp project",
		Long: `Initialize a project directory for workbook consolidation.

This creates:
  - dwp.yaml configuration file with the default settings
  - .gitignore rules keeping *.xlsx and *.csv files out of version control`,
		Example: `  # Initialize in the current directory
  dwp init

  # Initialize a new directory
  dwp init exports

  # Overwrite an existing dwp.yaml
  dwp init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			r := newRenderer(cmd, getConfig())
			return runInit(r, dir, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration")

	return cmd
}

func runInit(r *output.Renderer, dir string, force bool) error {
	if dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	configPath := filepath.Join(dir, "dwp.yaml")
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("dwp.yaml already exists. Use --force to overwrite")
	}

	starter := starterConfig{
		InputDir:    config.DefaultInputDir,
		OutputDir:   config.DefaultOutputDir,
		Threshold:   config.DefaultThreshold,
		HeaderScan:  config.DefaultHeaderScan,
		Environment: config.DefaultEnv,
	}
	data, err := yaml.Marshal(starter)
	if err != nil {
		return fmt.Errorf("failed to render configuration: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", configPath, err)
	}
	r.Println("created dwp.yaml")

	added, err := ensureIgnoreRules(filepath.Join(dir, ".gitignore"))
	if err != nil {
		return err
	}
	if added > 0 {
		r.Println("updated .gitignore")
	}

	r.Println()
	r.Println("Project initialized.")
	r.Println()
	r.Println("Next steps:")
	r.Println("  1. Drop the exported workbooks into the input directory")
	r.Println("  2. Run 'dwp sources' to check what will be picked up")
	r.Println("  3. Run 'dwp run' to produce the merged workbook")

	return nil
}

// ensureIgnoreRules appends any missing ignore rules to the .gitignore at
// path, creating the file when absent. Returns how many rules were added.
func ensureIgnoreRules(path string) (int, error) {
	existing := map[string]struct{}{}
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return 0, fmt.Errorf("failed to read %s: %w", path, err)
	}
	for _, line := range strings.Split(string(data), "\n") {
		existing[strings.TrimSpace(line)] = struct{}{}
	}

	var missing []string
	for _, rule := range ignoreRules {
		if _, ok := existing[rule]; !ok {
			missing = append(missing, rule)
		}
	}
	if len(missing) == 0 {
		return 0, nil
	}

	var b strings.Builder
	b.Write(data)
	if len(data) > 0 && !strings.HasSuffix(string(data), "\n") {
		b.WriteString("\n")
	}
	for _, rule := range missing {
		b.WriteString(rule)
		b.WriteString("\n")
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return 0, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return len(missing), nil
}

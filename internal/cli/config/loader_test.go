package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	intconfig "github.com/ManeeGit/DataWithoutPeople/internal/config"
)

func TestLoadConfigDefaults(t *testing.T) {
	ResetConfig()
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, intconfig.DefaultThreshold, cfg.Threshold)
	assert.Equal(t, intconfig.DefaultHeaderScan, cfg.HeaderScan)
	assert.Equal(t, "dev", cfg.Environment)
	assert.Equal(t, "auto", cfg.OutputFormat)
	assert.False(t, cfg.Verbose)
}

func TestLoadConfigFromFile(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "dwp.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
input_dir: exports
threshold: 90
environment: prod
`), 0o644))

	cfg, err := LoadConfig(cfgPath, nil)
	require.NoError(t, err)
	assert.Equal(t, 90, cfg.Threshold)
	assert.Equal(t, "prod", cfg.Environment)
	// Relative paths resolve against the config file's directory.
	assert.Equal(t, filepath.Join(dir, "exports"), cfg.InputDir)
	assert.Equal(t, cfgPath, GetConfigFileUsed())
}

func TestLoadConfigFoundUpward(t *testing.T) {
	ResetConfig()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "dwp.yaml"), []byte("threshold: 70\n"), 0o644))
	sub := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	t.Chdir(sub)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, 70, cfg.Threshold)
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "dwp.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("threshold: 90\n"), 0o644))
	t.Setenv("DWP_THRESHOLD", "75")

	cfg, err := LoadConfig(cfgPath, nil)
	require.NoError(t, err)
	assert.Equal(t, 75, cfg.Threshold)
}

func TestLoadConfigFlagsWin(t *testing.T) {
	ResetConfig()
	t.Chdir(t.TempDir())
	t.Setenv("DWP_THRESHOLD", "75")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("threshold", 0, "")
	flags.String("state", "", "")
	require.NoError(t, flags.Parse([]string{"--threshold=60", "--state=custom.db"}))

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)
	assert.Equal(t, 60, cfg.Threshold)
	assert.Equal(t, "custom.db", filepath.Base(cfg.StatePath))
}

func TestLoadConfigUnchangedFlagsIgnored(t *testing.T) {
	ResetConfig()
	t.Chdir(t.TempDir())

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("threshold", 42, "")
	require.NoError(t, flags.Parse(nil))

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)
	assert.Equal(t, intconfig.DefaultThreshold, cfg.Threshold)
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "dwp.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("threshold: 150\n"), 0o644))

	_, err := LoadConfig(cfgPath, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "threshold")
}

func TestValidateCategories(t *testing.T) {
	cfg := &Config{
		Threshold:    85,
		HeaderScan:   20,
		OutputFormat: "auto",
		Categories: []CategoryConfig{
			{Name: "deals", Patterns: []string{"deals_*.xlsx"}},
		},
	}
	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "id_columns")
}

func TestValidateOutputFormats(t *testing.T) {
	for _, format := range []string{"auto", "text", "markdown", "json", "csv"} {
		cfg := &Config{Threshold: 85, HeaderScan: 20, OutputFormat: format}
		assert.NoError(t, Validate(cfg), "format %q should be accepted", format)
	}
}

func TestValidateOutputFormatSuggestsClose(t *testing.T) {
	cfg := &Config{Threshold: 85, HeaderScan: 20, OutputFormat: "markdwn"}
	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `Did you mean "markdown"?`)

	cfg.OutputFormat = "xml"
	err = Validate(cfg)
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "Did you mean")
}

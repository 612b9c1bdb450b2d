package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManeeGit/DataWithoutPeople/internal/cli/config"
)

func runInitIn(t *testing.T, dir string, args ...string) error {
	t.Helper()
	config.ResetConfig()
	t.Chdir(dir)

	cmd := NewInitCommand()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	return cmd.Execute()
}

func TestInitCreatesConfigAndIgnoreRules(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, runInitIn(t, tmpDir))

	content, err := os.ReadFile(filepath.Join(tmpDir, "dwp.yaml"))
	require.NoError(t, err, "failed to read dwp.yaml")
	for _, expected := range []string{"input_dir:", "output_dir:", "threshold: 85", "header_scan: 20", "environment: dev"} {
		assert.Contains(t, string(content), expected, "config should contain %q", expected)
	}

	ignore, err := os.ReadFile(filepath.Join(tmpDir, ".gitignore"))
	require.NoError(t, err, "failed to read .gitignore")
	for _, rule := range []string{"*.xlsx", "*.csv", ".dwp/"} {
		assert.Contains(t, string(ignore), rule)
	}
}

func TestInitRefusesExistingConfigWithoutForce(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "dwp.yaml"), []byte("threshold: 70\n"), 0o600))

	err := runInitIn(t, tmpDir)
	assert.Error(t, err)

	// Existing config untouched.
	content, _ := os.ReadFile(filepath.Join(tmpDir, "dwp.yaml"))
	assert.Equal(t, "threshold: 70\n", string(content))
}

func TestInitForceOverwritesConfig(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "dwp.yaml"), []byte("threshold: 70\n"), 0o600))

	require.NoError(t, runInitIn(t, tmpDir, "--force"))

	content, err := os.ReadFile(filepath.Join(tmpDir, "dwp.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "threshold: 85")
}

func TestInitTargetDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, runInitIn(t, tmpDir, "exports"))

	_, err := os.Stat(filepath.Join(tmpDir, "exports", "dwp.yaml"))
	assert.NoError(t, err, "dwp.yaml should exist in the target directory")
	_, err = os.Stat(filepath.Join(tmpDir, "exports", ".gitignore"))
	assert.NoError(t, err, ".gitignore should exist in the target directory")
}

func TestEnsureIgnoreRulesAppendsOnlyMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".gitignore")
	require.NoError(t, os.WriteFile(path, []byte("*.xlsx\nnode_modules/\n"), 0o600))

	added, err := ensureIgnoreRules(path)
	require.NoError(t, err)
	assert.Equal(t, 2, added, "only *.csv and .dwp/ should be added")

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "*.xlsx\nnode_modules/\n*.csv\n.dwp/\n", string(content))
}

// Package commands_test provides tests for CLI command creation.
package commands

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRunCommand(t *testing.T) {
	cmd := NewRunCommand()

	assert.Equal(t, "run", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotEmpty(t, cmd.Example, "Example should not be empty")

	// Verify flags exist
	flags := []string{"dry-run", "skip-refine"}
	for _, flag := range flags {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "flag %q should exist", flag)
	}

	// Verify alias exists
	assert.NotEmpty(t, cmd.Aliases, "run command should have aliases")
	assert.Equal(t, "merge", cmd.Aliases[0], "run command should have 'merge' alias")
}

func TestNewOverlapCommand(t *testing.T) {
	cmd := NewOverlapCommand()

	assert.Equal(t, "overlap", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotNil(t, cmd.Flags().Lookup("csv"), "--csv flag should exist")
}

func TestNewSourcesCommand(t *testing.T) {
	cmd := NewSourcesCommand()

	assert.Equal(t, "sources", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
}

func TestNewHistoryCommand(t *testing.T) {
	cmd := NewHistoryCommand()

	assert.Equal(t, "history", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotNil(t, cmd.Flags().Lookup("limit"), "--limit flag should exist")
}

func TestNewWatchCommand(t *testing.T) {
	cmd := NewWatchCommand()

	assert.Equal(t, "watch", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotNil(t, cmd.Flags().Lookup("skip-refine"), "--skip-refine flag should exist")
}

func TestNewVersionCommand(t *testing.T) {
	cmd := NewVersionCommand("1.2.3", "2026-01-15", "abc1234")

	assert.Equal(t, "version", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")

	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	require.NoError(t, cmd.Execute())

	out := buf.String()
	assert.Contains(t, out, "dwp v1.2.3")
	assert.Contains(t, out, "2026-01-15")
	assert.Contains(t, out, "abc1234")
}

func TestVersionCommandOmitsUnknownBuildInfo(t *testing.T) {
	cmd := NewVersionCommand("0.1.0", "unknown", "unknown")

	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	require.NoError(t, cmd.Execute())

	assert.Equal(t, "dwp v0.1.0\n", buf.String())
}

func TestIsWorkbook(t *testing.T) {
	assert.True(t, isWorkbook("deals_2024.xlsx"))
	assert.True(t, isWorkbook("Deal_Investors.XLSX"))
	assert.False(t, isWorkbook("~$deals_2024.xlsx"), "Excel lock files are not inputs")
	assert.False(t, isWorkbook(".hidden.xlsx"))
	assert.False(t, isWorkbook("notes.csv"))
}

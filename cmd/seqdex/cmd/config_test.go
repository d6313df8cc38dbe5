package cmd

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigShow_PrintsEffectiveConfig(t *testing.T) {
	isolate(t)

	out, err := runCLI(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "k: 3")
	assert.Contains(t, out, "fuzzy_threshold: 0.5")
}

func TestConfigShow_HonorsEnvOverride(t *testing.T) {
	isolate(t)
	t.Setenv("SEQDEX_K", "5")

	out, err := runCLI(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "k: 5")
}

func TestConfigInit_WritesAndRefusesOverwrite(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	oldDir, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(oldDir) })

	out, err := runCLI(t, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "seqdex.yaml")
	assert.FileExists(t, "seqdex.yaml")

	_, err = runCLI(t, "config", "init")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, err = runCLI(t, "config", "init", "--force")
	assert.NoError(t, err)
}

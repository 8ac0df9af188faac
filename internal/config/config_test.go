package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DecodesEmbeddedDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 1, cfg.Generation.NumModules.Min)
	assert.Equal(t, 3, cfg.Generation.NumModules.Max)
	assert.Equal(t, 30, cfg.Generation.GenerationTimeoutSec)
	assert.Equal(t, 0.05, cfg.Generation.ReturnAbortPossibility)
	assert.Equal(t, []string{"default"}, cfg.Fuzz.Runs)
	assert.Equal(t, "known_errors", cfg.Fuzz.KnownErrorDir)
}

func TestLoad_OverrideFileReplacesOnlyItsOwnKeys(t *testing.T) {
	dir := t.TempDir()
	overridePath := filepath.Join(dir, "movesmith.toml")
	override := `
[generation]
num_modules = { min = 5, target = 5, max = 5 }

[fuzz]
ignore_strs = ["flaky known issue"]
`
	require.NoError(t, os.WriteFile(overridePath, []byte(override), 0o644))

	cfg, err := Load(overridePath)
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Generation.NumModules.Min)
	assert.Equal(t, 5, cfg.Generation.NumModules.Max)
	assert.Equal(t, []string{"flaky known issue"}, cfg.Fuzz.IgnoreStrs)
	// Untouched defaults still decode through unchanged.
	assert.Equal(t, 30, cfg.Generation.GenerationTimeoutSec)
	assert.Equal(t, 4, cfg.Generation.NumFunctionsInModule.Target)
}

func TestToGeneratorConfig_CopiesEveryGenerationField(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	g := cfg.ToGeneratorConfig()

	assert.Equal(t, cfg.Generation.NumModules, g.NumModules)
	assert.Equal(t, cfg.Generation.ExprDepth, g.ExprDepth)
	assert.Equal(t, cfg.Generation.AllowRecursiveCalls, g.AllowRecursiveCalls)
	assert.Equal(t, cfg.Generation.ReturnAbortPossibility, g.ReturnAbortPossibility)
}

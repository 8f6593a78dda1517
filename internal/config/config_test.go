package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_MatchesDocumentedValues(t *testing.T) {
	cfg := Default()
	assert.True(t, cfg.Dev)
	assert.Equal(t, 5, cfg.WarnRateBurst)
	assert.Equal(t, [2]string{"{{", "}}"}, cfg.Compiler.Delimiters)
	assert.Equal(t, "condense", cfg.Compiler.WhitespaceMode)
	assert.True(t, cfg.Compiler.CacheEnabled)
	assert.Equal(t, "noop", cfg.Metrics.Backend)
	assert.Equal(t, "console", cfg.Observ.Backend)
}

func TestLoad_PartialFileOverridesOnlySetFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bloom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dev: false\nmetrics:\n  backend: prometheus\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.False(t, cfg.Dev)
	assert.Equal(t, "prometheus", cfg.Metrics.Backend)
	// Unset fields keep Default()'s values.
	assert.Equal(t, "console", cfg.Observ.Backend)
	assert.Equal(t, [2]string{"{{", "}}"}, cfg.Compiler.Delimiters)
}

func TestLoad_MissingFileReturnsError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidYAMLReturnsError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dev: [this is not a bool"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestApply_RunsOptionsInOrder(t *testing.T) {
	cfg := Apply(Default(), WithDev(false), WithMetricsBackend("prometheus"))
	assert.False(t, cfg.Dev)
	assert.Equal(t, "prometheus", cfg.Metrics.Backend)
}

func TestWithDev_OverridesFlag(t *testing.T) {
	cfg := Apply(Default(), WithDev(false))
	assert.False(t, cfg.Dev)
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRunConfigMissingFileGivesDefaults(t *testing.T) {
	cfg, err := LoadRunConfig(filepath.Join(t.TempDir(), RunConfigFileName))
	require.NoError(t, err)
	assert.False(t, cfg.TraceAsync)
	assert.False(t, cfg.NoColor)
	assert.Equal(t, 0, cfg.MaxCallDepth)
}

func TestLoadRunConfigReadsFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), RunConfigFileName)
	data := "trace_async: true\nmax_call_depth: 100\nno_color: true\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := LoadRunConfig(path)
	require.NoError(t, err)
	assert.True(t, cfg.TraceAsync)
	assert.True(t, cfg.NoColor)
	assert.Equal(t, 100, cfg.MaxCallDepth)
}

func TestLoadRunConfigPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), RunConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("trace_async: true\n"), 0o644))

	cfg, err := LoadRunConfig(path)
	require.NoError(t, err)
	assert.True(t, cfg.TraceAsync)
	assert.Equal(t, 0, cfg.MaxCallDepth)
}

func TestLoadRunConfigRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), RunConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("trace_async: [unclosed\n"), 0o644))

	_, err := LoadRunConfig(path)
	assert.Error(t, err)
}

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: debug\nformat: yaml\nmax_array_bytes: 4096\n"), 0o600))

	cfg := loadConfigFile(path)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "yaml", cfg.Format)
	require.NotNil(t, cfg.MaxArrayBytes)
	assert.Equal(t, uint64(4096), *cfg.MaxArrayBytes)
}

func TestLoadConfigFileFallbacks(t *testing.T) {
	assert.Equal(t, Config{}, loadConfigFile(""))
	assert.Equal(t, Config{}, loadConfigFile(filepath.Join(t.TempDir(), "absent.yaml")))

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("format: [unterminated"), 0o600))
	assert.Equal(t, Config{}, loadConfigFile(bad))
}

func TestConfigPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	assert.Equal(t, filepath.Join(dir, "npzinspect", "config.yaml"), configPath())
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.HTTPPort)
	assert.Equal(t, "badger", cfg.StoreBackend)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.StrictTransitions)
	assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, ":8000", cfg.Addr())
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tregod.yaml")
	content := `
node_id: van-01
http_port: 9090
strict_transitions: true
store:
  backend: bolt
shutdown_timeout: 10s
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "van-01", cfg.NodeID)
	assert.Equal(t, 9090, cfg.HTTPPort)
	assert.True(t, cfg.StrictTransitions)
	assert.Equal(t, "bolt", cfg.StoreBackend)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tregod.yaml")
	require.NoError(t, os.WriteFile(path, []byte("http_port: 9090\nstore:\n  backend: bolt\n"), 0644))

	t.Setenv("TREGO_HTTP_PORT", "7070")
	t.Setenv("TREGO_STORE_BACKEND", "memory")
	t.Setenv("TREGO_DEBUG", "true")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.HTTPPort)
	assert.Equal(t, "memory", cfg.StoreBackend)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

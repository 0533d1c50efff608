package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberhaus/hotswap/pkg/observability"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 1024, cfg.Graph.NodeCapacity)
	assert.Equal(t, 256, cfg.Graph.MaxTraversalDepth)
	assert.Equal(t, 128, cfg.Registry.HistoryLimit)
	assert.Equal(t, 32, cfg.Rollback.PoolCapacity)
	assert.Equal(t, 30*time.Second, cfg.Migration.Timeout)
	assert.Equal(t, 0, cfg.Migration.RetryCount)
	assert.Equal(t, observability.InfoLevel, cfg.Observability.LogLevel)
	assert.True(t, cfg.Observability.MetricsEnabled)
}

func TestLoadConfig_FromEnvironment(t *testing.T) {
	t.Setenv("HOTSWAP_NODE_CAPACITY", "2048")
	t.Setenv("HOTSWAP_MIGRATION_TIMEOUT", "5s")
	t.Setenv("HOTSWAP_LOG_LEVEL", "debug")
	t.Setenv("HOTSWAP_METRICS_ENABLED", "false")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 2048, cfg.Graph.NodeCapacity)
	assert.Equal(t, 5*time.Second, cfg.Migration.Timeout)
	assert.Equal(t, observability.DebugLevel, cfg.Observability.LogLevel)
	assert.False(t, cfg.Observability.MetricsEnabled)
}

func TestLoadConfig_MalformedEnvFallsBack(t *testing.T) {
	t.Setenv("HOTSWAP_NODE_CAPACITY", "not-a-number")
	t.Setenv("HOTSWAP_MIGRATION_TIMEOUT", "soon")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 1024, cfg.Graph.NodeCapacity)
	assert.Equal(t, 30*time.Second, cfg.Migration.Timeout)
}

func TestLoadConfig_InvalidEnvFailsValidation(t *testing.T) {
	t.Setenv("HOTSWAP_ROLLBACK_CAPACITY", "-1")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestLoadFile_Overlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hotswap.yaml")
	data := []byte(`
graph:
  node_capacity: 4096
migration:
  timeout: 10s
observability:
  log_level: warn
`)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.NoError(t, LoadFile(cfg, path))

	// File settings win; everything else keeps its prior value.
	assert.Equal(t, 4096, cfg.Graph.NodeCapacity)
	assert.Equal(t, 10*time.Second, cfg.Migration.Timeout)
	assert.Equal(t, observability.WarnLevel, cfg.Observability.LogLevel)
	assert.Equal(t, 128, cfg.Registry.HistoryLimit)
}

func TestLoadFile_Missing(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Error(t, LoadFile(cfg, filepath.Join(t.TempDir(), "absent.yaml")))
}

func TestLoadFile_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("graph: ["), 0o644))

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Error(t, LoadFile(cfg, path))
}

func TestConfig_Validate(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	cases := []func(*Config){
		func(c *Config) { c.Graph.NodeCapacity = 0 },
		func(c *Config) { c.Graph.MaxTraversalDepth = 0 },
		func(c *Config) { c.Graph.ReloadOrderCap = 0 },
		func(c *Config) { c.Registry.HistoryLimit = 0 },
		func(c *Config) { c.Rollback.PoolCapacity = 0 },
		func(c *Config) { c.Migration.Timeout = 0 },
		func(c *Config) { c.Migration.RetryCount = -1 },
	}
	for i, mutate := range cases {
		bad := *cfg
		mutate(&bad)
		assert.Error(t, bad.Validate(), "case %d", i)
	}
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, observability.DebugLevel, parseLogLevel("debug"))
	assert.Equal(t, observability.WarnLevel, parseLogLevel("WARNING"))
	assert.Equal(t, observability.ErrorLevel, parseLogLevel("error"))
	assert.Equal(t, observability.InfoLevel, parseLogLevel("unrecognized"))
}

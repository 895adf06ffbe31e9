package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultValues(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	content := `
log:
  level: info
`
	err := os.WriteFile(configFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := Load(configFile)
	require.NoError(t, err)
	assert.NotNil(t, cfg)

	assert.Equal(t, 0.9, cfg.Rank.Damping)
	assert.Equal(t, 1e-7, cfg.Rank.Epsilon)
	assert.Equal(t, 100, cfg.Rank.MaxIter)
	assert.Equal(t, 3, cfg.Rank.Workers)
	assert.Equal(t, 3, cfg.Rank.TopK)
	assert.Equal(t, 4096, cfg.Ingest.BufferSize)
	assert.Equal(t, 300, cfg.Ingest.InListCap)
	assert.False(t, cfg.History.Enabled)
	assert.Equal(t, "sqlite", cfg.History.Type)
	assert.Equal(t, "local", cfg.Storage.Type)
}

func TestLoad_CustomValues(t *testing.T) {
	content := []byte(`
rank:
  damping: 0.85
  epsilon: 1.0e-9
  max_iter: 50
  workers: 8
  top_k: 10
ingest:
  buffer_size: 1024
  inlist_cap: 64
history:
  enabled: true
  type: sqlite
  path: /tmp/runs.db
log:
  level: debug
`)

	cfg, err := LoadFromReader("yaml", content)
	require.NoError(t, err)

	assert.Equal(t, 0.85, cfg.Rank.Damping)
	assert.Equal(t, 1e-9, cfg.Rank.Epsilon)
	assert.Equal(t, 50, cfg.Rank.MaxIter)
	assert.Equal(t, 8, cfg.Rank.Workers)
	assert.Equal(t, 10, cfg.Rank.TopK)
	assert.Equal(t, 1024, cfg.Ingest.BufferSize)
	assert.Equal(t, 64, cfg.Ingest.InListCap)
	assert.True(t, cfg.History.Enabled)
	assert.Equal(t, "/tmp/runs.db", cfg.History.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_ExplicitMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate_Rejects(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		message string
	}{
		{"damping too high", func(c *Config) { c.Rank.Damping = 1.0 }, "damping"},
		{"damping zero", func(c *Config) { c.Rank.Damping = 0 }, "damping"},
		{"negative epsilon", func(c *Config) { c.Rank.Epsilon = -1 }, "epsilon"},
		{"zero iterations", func(c *Config) { c.Rank.MaxIter = 0 }, "iterations"},
		{"zero workers", func(c *Config) { c.Rank.Workers = 0 }, "worker"},
		{"zero top-k", func(c *Config) { c.Rank.TopK = 0 }, "top-k"},
		{"odd buffer", func(c *Config) { c.Ingest.BufferSize = 7 }, "buffer"},
		{"bad history type", func(c *Config) { c.History.Enabled = true; c.History.Type = "oracle" }, "history"},
		{"cos without bucket", func(c *Config) { c.Storage.Type = "cos" }, "COS"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := LoadFromReader("yaml", []byte("{}"))
			require.NoError(t, err)

			tc.mutate(cfg)
			err = cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.message)
		})
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("PAGERANK_RANK_WORKERS", "12")

	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("rank:\n  workers: 3\n"), 0644))

	cfg, err := Load(configFile)
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.Rank.Workers)
}

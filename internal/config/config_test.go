package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromPathAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  address: ":9090"
cache:
  redis_url: "redis://cache:6379/1"
`)

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, "redis://cache:6379/1", cfg.Cache.RedisURL)
	assert.Equal(t, 10, cfg.Server.ReadTimeoutSeconds)
	assert.Equal(t, 10, cfg.Storage.MaxOpenConns)
	assert.Equal(t, 5, cfg.Cache.OpTimeoutSeconds)
}

func TestEnvOverridesWin(t *testing.T) {
	path := writeConfig(t, `
storage:
  database_url: "sqlite:///tmp/from-file.db"
cache:
  redis_url: "redis://from-file:6379/0"
`)

	t.Setenv("PG_DSN", "postgres://app:app@db:5432/app")
	t.Setenv("REDIS_DSN", "redis://from-env:6379/0")
	t.Setenv("AUTHD_ADDR", ":7070")

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres://app:app@db:5432/app", cfg.Storage.DatabaseURL)
	assert.Equal(t, "redis://from-env:6379/0", cfg.Cache.RedisURL)
	assert.Equal(t, ":7070", cfg.Server.Address)
}

func TestLoadWithoutFileUsesEnvAndDefaults(t *testing.T) {
	t.Setenv("AUTHD_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("PG_DSN", "")
	t.Setenv("REDIS_DSN", "redis://from-env:6379/0")
	t.Setenv("AUTHD_ADDR", "")

	// Run from a directory with no config.yaml candidate.
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(cwd) })

	cfg, path, err := Load()
	require.NoError(t, err)
	assert.Empty(t, path)
	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, "redis://from-env:6379/0", cfg.Cache.RedisURL)
	assert.Empty(t, cfg.Storage.DatabaseURL)
}

func TestValidate(t *testing.T) {
	result := Validate(nil)
	assert.NotEmpty(t, result.Errors)

	cfg := &Config{}
	applyDefaults(cfg)
	result = Validate(cfg)
	assert.Empty(t, result.Errors)
	// Memory user registry is allowed but flagged.
	assert.NotEmpty(t, result.Warnings)

	cfg.Cache.RedisURL = ""
	result = Validate(cfg)
	assert.NotEmpty(t, result.Errors)
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

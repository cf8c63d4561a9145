package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg := Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, AuthNone, cfg.SearXNG.AuthType)
	assert.False(t, cfg.SearXNG.Configured())
}

func TestLoadMalformedFileYieldsDefaults(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "[searxng\nbase_url = broken")
	cfg := Load(path)
	assert.False(t, cfg.SearXNG.Configured())
	assert.Equal(t, AuthNone, cfg.SearXNG.AuthType)
}

func TestLoadValidFile(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
[log]
level = "debug"
format = "json"

[searxng]
base_url = "https://search.example.com"
auth_type = "basic"
username = "alice"
password = "hunter2"
`)
	cfg := Load(path)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	require.True(t, cfg.SearXNG.Configured())
	assert.Equal(t, "https://search.example.com", cfg.SearXNG.BaseURL)
	assert.Equal(t, AuthBasic, cfg.SearXNG.AuthType)
	assert.Equal(t, "alice", cfg.SearXNG.Username)
}

func TestLoadUnknownAuthTypeDowngradesToNone(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
[searxng]
base_url = "https://search.example.com"
auth_type = "digest"
`)
	cfg := Load(path)
	assert.Equal(t, AuthNone, cfg.SearXNG.AuthType)
}

func TestDefaultPathHonorsAgentDirEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(AgentDirEnv, dir)
	assert.Equal(t, filepath.Join(dir, ConfigFileName), DefaultPath())
}

func TestDefaultPathFallsBackToHome(t *testing.T) {
	t.Setenv(AgentDirEnv, "")
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".pi", "agent", ConfigFileName), DefaultPath())
}

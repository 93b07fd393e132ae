package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  http_port: 9090
mysql:
  host: db
  port: 3306
  user: app
  password: secret
  database: coursehub
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.HTTPPort)
	assert.Equal(t, 9090, cfg.Server.WSPort)
	assert.Equal(t, "debug", cfg.Server.Mode)
	assert.False(t, cfg.Server.IsRelease())
	assert.Equal(t, "utf8mb4", cfg.MySQL.Charset)
	assert.Equal(t, 48, cfg.JWT.AccessExpireHours)
	assert.Equal(t, 168, cfg.JWT.RefreshExpireHours)
	assert.Equal(t, 30*time.Second, cfg.WebSocket.PongWait)
	assert.Equal(t, PresenceMemory, cfg.Presence.Backend)
	assert.Equal(t, "app:secret@tcp(db:3306)/coursehub?charset=utf8mb4&parseTime=True&loc=UTC", cfg.MySQL.DSN())
	assert.Same(t, cfg, GlobalConfig)
}

func TestLoad_EnvOverride(t *testing.T) {
	path := writeConfig(t, `
server:
  mode: debug
presence:
  backend: memory
`)
	t.Setenv("COURSEHUB_SERVER_MODE", "release")
	t.Setenv("COURSEHUB_PRESENCE_BACKEND", "redis")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.Server.IsRelease())
	assert.Equal(t, PresenceRedis, cfg.Presence.Backend)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

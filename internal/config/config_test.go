package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 2*time.Second, cfg.Game.SettleDelayDuration())
	assert.Equal(t, 10*time.Second, cfg.Game.ActionWindowDuration())
	assert.Equal(t, 5*time.Second, cfg.Game.RestartDelayDuration())
	assert.Equal(t, 30*time.Second, cfg.Game.ReconnectGraceDuration())
	assert.Equal(t, 8*time.Second, cfg.Game.NoticeTTLDuration())
	assert.Equal(t, 2*time.Second, cfg.Voice.JoinIntervalDuration())
	assert.False(t, cfg.Game.HostAutoJoin)
}

func TestLoad(t *testing.T) {
	content := `
server:
  port: 8080
game:
  settle_delay: 3
  reconnect_grace: 60
  host_auto_join: true
voice:
  join_interval: 1
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 3*time.Second, cfg.Game.SettleDelayDuration())
	assert.Equal(t, 60*time.Second, cfg.Game.ReconnectGraceDuration())
	assert.True(t, cfg.Game.HostAutoJoin)
	assert.Equal(t, time.Second, cfg.Voice.JoinIntervalDuration())

	// 未设置的字段回落默认值
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 10*time.Second, cfg.Game.ActionWindowDuration())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("does/not/exist.yaml")
	assert.Error(t, err)
}

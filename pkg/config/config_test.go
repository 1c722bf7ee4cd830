package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8744", cfg.ListenAddr)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Notify.Slack.Enabled())
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chatwarden.yaml")
	content := `listen_addr: 0.0.0.0:9000
host_version: 4.1.0
log:
  level: debug
notify:
  slack:
    token: xoxb-test
    channel: "#mods"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9000", cfg.ListenAddr)
	assert.Equal(t, "4.1.0", cfg.HostVersion)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Notify.Slack.Enabled())
	// Fields the file omits keep their defaults.
	assert.Equal(t, "data/chatwarden.db", cfg.SettingsDBPath)
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chatwarden.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen_addr: 0.0.0.0:9000\n"), 0o644))
	t.Setenv("CHATWARDEN_LISTEN_ADDR", "127.0.0.1:7000")
	t.Setenv("CHATWARDEN_TELEGRAM_TOKEN", "tok")
	t.Setenv("CHATWARDEN_TELEGRAM_CHAT_ID", "-100123")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:7000", cfg.ListenAddr)
	assert.True(t, cfg.Notify.Telegram.Enabled())
	assert.Equal(t, int64(-100123), cfg.Notify.Telegram.ChatID)
}

func TestLoadUnparsableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chatwarden.yaml")
	require.NoError(t, os.WriteFile(path, []byte(":\n\t- nope"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

// Package config holds service-level configuration: where to listen, where
// settings persist, logging, and alert delivery credentials. Moderation
// behavior itself lives in the settings store, not here.
package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

type Config struct {
	ListenAddr     string `yaml:"listen_addr" env:"CHATWARDEN_LISTEN_ADDR"`
	SettingsDBPath string `yaml:"settings_db_path" env:"CHATWARDEN_SETTINGS_DB"`
	AuditPath      string `yaml:"audit_path" env:"CHATWARDEN_AUDIT_PATH"`
	HostVersion    string `yaml:"host_version" env:"CHATWARDEN_HOST_VERSION"`
	HostAPIBaseURL string `yaml:"host_api_base_url" env:"CHATWARDEN_HOST_API_BASE_URL"`

	Log    LogConfig    `yaml:"log"`
	Notify NotifyConfig `yaml:"notify"`
}

type LogConfig struct {
	Level      string `yaml:"level" env:"CHATWARDEN_LOG_LEVEL"`
	File       string `yaml:"file" env:"CHATWARDEN_LOG_FILE"`
	MaxSizeMB  int    `yaml:"max_size_mb" env:"CHATWARDEN_LOG_MAX_SIZE_MB"`
	MaxBackups int    `yaml:"max_backups" env:"CHATWARDEN_LOG_MAX_BACKUPS"`
}

type NotifyConfig struct {
	Slack    SlackConfig    `yaml:"slack"`
	Discord  DiscordConfig  `yaml:"discord"`
	Telegram TelegramConfig `yaml:"telegram"`
	Lark     LarkConfig     `yaml:"lark"`
}

type SlackConfig struct {
	Token   string `yaml:"token" env:"CHATWARDEN_SLACK_TOKEN"`
	Channel string `yaml:"channel" env:"CHATWARDEN_SLACK_CHANNEL"`
}

func (c SlackConfig) Enabled() bool { return c.Token != "" && c.Channel != "" }

type DiscordConfig struct {
	BotToken  string `yaml:"bot_token" env:"CHATWARDEN_DISCORD_BOT_TOKEN"`
	ChannelID string `yaml:"channel_id" env:"CHATWARDEN_DISCORD_CHANNEL_ID"`
}

func (c DiscordConfig) Enabled() bool { return c.BotToken != "" && c.ChannelID != "" }

type TelegramConfig struct {
	Token  string `yaml:"token" env:"CHATWARDEN_TELEGRAM_TOKEN"`
	ChatID int64  `yaml:"chat_id" env:"CHATWARDEN_TELEGRAM_CHAT_ID"`
}

func (c TelegramConfig) Enabled() bool { return c.Token != "" && c.ChatID != 0 }

type LarkConfig struct {
	AppID     string `yaml:"app_id" env:"CHATWARDEN_LARK_APP_ID"`
	AppSecret string `yaml:"app_secret" env:"CHATWARDEN_LARK_APP_SECRET"`
	ChatID    string `yaml:"chat_id" env:"CHATWARDEN_LARK_CHAT_ID"`
}

func (c LarkConfig) Enabled() bool { return c.AppID != "" && c.AppSecret != "" && c.ChatID != "" }

func defaults() Config {
	return Config{
		ListenAddr:     "127.0.0.1:8744",
		SettingsDBPath: "data/chatwarden.db",
		AuditPath:      "data/hook-audit.jsonl",
		HostAPIBaseURL: "http://127.0.0.1:4567",
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// Load reads the YAML config at path (skipped when path is empty or the
// file does not exist), then applies environment overrides on top.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse config environment: %w", err)
	}
	return &cfg, nil
}

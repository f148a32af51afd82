package config

import (
	"log/slog"
	"strings"
	"time"
)

// Config is the root configuration for nightslayer-bot.
// Every field is read from the process environment.
type Config struct {
	Discord    DiscordConfig
	LLM        LLMConfig
	BattleNet  BattleNetConfig
	Database   DatabaseConfig
	Bot        BotConfig
	LevelCheck LevelCheckConfig
	Heartbeat  HeartbeatConfig
	Log        LogConfig
}

// DiscordConfig holds gateway credentials.
type DiscordConfig struct {
	Token     string   `env:"DISCORD_TOKEN"`
	AllowFrom []string `env:"DISCORD_ALLOW_FROM" envSeparator:","`
}

// LLMConfig holds chat model settings. The bot answers mentions with a
// canned greeting when no model is configured.
type LLMConfig struct {
	APIURL      string  `env:"LLAMA_API_URL"`
	Provider    string  `env:"LLM_PROVIDER" envDefault:"openai"`
	Model       string  `env:"LLM_MODEL"`
	APIKey      string  `env:"LLM_API_KEY"`
	Temperature float64 `env:"LLM_TEMPERATURE" envDefault:"0.4"`
	MaxTokens   int     `env:"LLM_MAX_TOKENS" envDefault:"512"`
}

// Enabled reports whether enough is set to reach a model.
func (c LLMConfig) Enabled() bool {
	switch c.Provider {
	case ProviderAnthropic:
		return c.APIKey != ""
	default:
		return c.APIURL != ""
	}
}

// Supported LLM providers.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// BattleNetConfig holds Blizzard API credentials and the realm to query.
type BattleNetConfig struct {
	ClientID          string  `env:"BATTLENET_CLIENT_ID"`
	ClientSecret      string  `env:"BATTLENET_CLIENT_SECRET"`
	Region            string  `env:"WOW_REGION" envDefault:"us"`
	Realm             string  `env:"WOW_REALM" envDefault:"nightslayer"`
	Namespace         string  `env:"WOW_NAMESPACE" envDefault:"profile-classicann-us"`
	Locale            string  `env:"WOW_LOCALE" envDefault:"en_US"`
	RequestsPerSecond float64 `env:"WOW_REQUESTS_PER_SECOND" envDefault:"10"`
	// Fanout bounds concurrent profile lookups during a level check.
	Fanout int `env:"WOW_FANOUT" envDefault:"4"`
}

// Enabled reports whether both client credentials are present.
func (c BattleNetConfig) Enabled() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// DatabaseConfig holds the sqlite location.
type DatabaseConfig struct {
	Path string `env:"DATABASE_PATH" envDefault:"./discord-bot.db"`
}

// BotConfig holds dispatch settings.
type BotConfig struct {
	Workers      int    `env:"BOT_WORKERS" envDefault:"8"`
	HistoryLimit int    `env:"HISTORY_LIMIT" envDefault:"10"`
	Greeting     string `env:"BOT_GREETING"`
}

// LevelCheckConfig schedules a recurring level report.
type LevelCheckConfig struct {
	Schedule  string `env:"LEVELCHECK_SCHEDULE"`
	TZ        string `env:"LEVELCHECK_TZ"`
	ChannelID string `env:"LEVELCHECK_CHANNEL_ID"`
	Raw       bool   `env:"LEVELCHECK_RAW"`
}

// Enabled reports whether a schedule is configured.
func (c LevelCheckConfig) Enabled() bool {
	return c.Schedule != ""
}

// HeartbeatConfig holds the gateway watchdog period.
type HeartbeatConfig struct {
	Interval time.Duration `env:"HEARTBEAT_INTERVAL" envDefault:"1m"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"journal"`
}

// SlogLevel maps Level onto slog. Unknown values fall back to info.
func (c LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(c.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/adhocore/gronx"
)

// Validate checks the configuration for invalid or missing values.
func (c *Config) Validate() error {
	return joinErrs(c.validate(true))
}

// ValidateOffline is Validate without the gateway credentials, for the
// local console.
func (c *Config) ValidateOffline() error {
	return joinErrs(c.validate(false))
}

func joinErrs(errs []string) error {
	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

func (c *Config) validate(gateway bool) []string {
	var errs []string

	if gateway && c.Discord.Token == "" {
		errs = append(errs, "DISCORD_TOKEN is required")
	}

	// llm
	switch c.LLM.Provider {
	case ProviderOpenAI, ProviderAnthropic:
	default:
		errs = append(errs, fmt.Sprintf("LLM_PROVIDER must be %q or %q, got %q", ProviderOpenAI, ProviderAnthropic, c.LLM.Provider))
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		errs = append(errs, "LLM_TEMPERATURE must be between 0 and 2")
	}
	if c.LLM.MaxTokens < 0 {
		errs = append(errs, "LLM_MAX_TOKENS must be non-negative")
	}

	// battle.net
	bn := c.BattleNet
	if (bn.ClientID == "") != (bn.ClientSecret == "") {
		errs = append(errs, "BATTLENET_CLIENT_ID and BATTLENET_CLIENT_SECRET must be set together")
	}
	if bn.RequestsPerSecond <= 0 {
		errs = append(errs, "WOW_REQUESTS_PER_SECOND must be positive")
	}
	if bn.Fanout < 1 {
		errs = append(errs, "WOW_FANOUT must be at least 1")
	}

	if c.Database.Path == "" {
		errs = append(errs, "DATABASE_PATH must not be empty")
	}

	// bot
	if c.Bot.Workers < 1 {
		errs = append(errs, "BOT_WORKERS must be at least 1")
	}
	if c.Bot.HistoryLimit < 1 {
		errs = append(errs, "HISTORY_LIMIT must be at least 1")
	}

	// level check
	lc := c.LevelCheck
	if lc.Enabled() {
		g := gronx.New()
		if !g.IsValid(lc.Schedule) {
			errs = append(errs, fmt.Sprintf("LEVELCHECK_SCHEDULE %q is not a valid cron expression", lc.Schedule))
		}
		if lc.TZ != "" {
			if _, err := time.LoadLocation(lc.TZ); err != nil {
				errs = append(errs, fmt.Sprintf("LEVELCHECK_TZ %q is not a known timezone", lc.TZ))
			}
		}
		if lc.ChannelID == "" {
			errs = append(errs, "LEVELCHECK_CHANNEL_ID is required when LEVELCHECK_SCHEDULE is set")
		}
	}

	if c.Heartbeat.Interval <= 0 {
		errs = append(errs, "HEARTBEAT_INTERVAL must be positive")
	}

	switch c.Log.Format {
	case "journal", "text", "color":
	default:
		errs = append(errs, fmt.Sprintf("LOG_FORMAT must be journal, text or color, got %q", c.Log.Format))
	}

	return errs
}

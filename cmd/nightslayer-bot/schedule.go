package main

import (
	"fmt"

	"github.com/joebot/nightslayer-bot/internal/bus"
	"github.com/joebot/nightslayer-bot/internal/channel"
	"github.com/joebot/nightslayer-bot/internal/config"
	"github.com/joebot/nightslayer-bot/internal/cron"
)

const levelCheckJob = "levelcheck"

// newScheduler builds the cron service with the configured level check.
// onJob may be nil when the jobs are only listed.
func newScheduler(cfg *config.Config, b *bus.MessageBus, onJob cron.OnJob) (*cron.Service, error) {
	s := cron.NewService(b, onJob)
	lc := cfg.LevelCheck
	if !lc.Enabled() {
		return s, nil
	}
	sched := cron.Schedule{Expr: lc.Schedule, TZ: lc.TZ}
	if _, err := s.AddJob(levelCheckJob, sched, channel.DiscordName, lc.ChannelID); err != nil {
		return nil, fmt.Errorf("schedule level check: %w", err)
	}
	return s, nil
}

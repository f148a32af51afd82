package heartbeat

import (
	"context"
	"log/slog"
	"time"
)

// DefaultInterval is the default heartbeat interval.
const DefaultInterval = time.Minute

// Probe reports whether the watched connection is currently up.
type Probe func() bool

// Service periodically checks the gateway connection and logs changes.
type Service struct {
	name     string
	interval time.Duration
	probe    Probe
	now      func() time.Time

	up        bool
	seen      bool
	downSince time.Time
}

// NewService creates a new heartbeat watching the connection called name.
func NewService(name string, interval time.Duration, probe Probe) *Service {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Service{
		name:     name,
		interval: interval,
		probe:    probe,
		now:      time.Now,
	}
}

// Run starts the heartbeat loop. It blocks until ctx is cancelled.
func (s *Service) Run(ctx context.Context) {
	slog.Info("Heartbeat started", "watch", s.name, "interval", s.interval)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Heartbeat stopped")
			return
		case <-ticker.C:
			s.tick()
		}
	}
}

// tick samples the probe once. Only the Run goroutine calls it.
func (s *Service) tick() {
	up := s.probe()
	now := s.now()

	switch {
	case !s.seen:
		s.seen = true
		if up {
			slog.Debug("Heartbeat: connected", "watch", s.name)
		} else {
			s.downSince = now
			slog.Warn("Heartbeat: not connected", "watch", s.name)
		}
	case up && !s.up:
		slog.Info("Heartbeat: connection restored", "watch", s.name, "downtime", now.Sub(s.downSince).Round(time.Second))
	case !up && s.up:
		s.downSince = now
		slog.Warn("Heartbeat: connection lost", "watch", s.name)
	case !up:
		if down := now.Sub(s.downSince); down >= s.interval {
			slog.Warn("Heartbeat: still disconnected", "watch", s.name, "for", down.Round(time.Second))
		}
	default:
		slog.Debug("Heartbeat: OK", "watch", s.name)
	}
	s.up = up
}

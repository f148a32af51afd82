package cron

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/adhocore/gronx"

	"github.com/joebot/nightslayer-bot/internal/bus"
)

const defaultTick = 15 * time.Second

// OnJob is the callback invoked when a job fires. It returns the text to
// post; an empty string posts nothing.
type OnJob func(ctx context.Context, job *Job) (string, error)

// Service runs scheduled jobs and posts their output to the bus.
type Service struct {
	bus   *bus.MessageBus
	onJob OnJob
	tick  time.Duration
	now   func() time.Time

	mu   sync.Mutex
	jobs []*Job
}

// NewService creates a new cron service.
func NewService(b *bus.MessageBus, onJob OnJob) *Service {
	return &Service{
		bus:   b,
		onJob: onJob,
		tick:  defaultTick,
		now:   time.Now,
	}
}

// Run starts the cron service. It blocks until ctx is cancelled.
func (s *Service) Run(ctx context.Context) {
	slog.Info("Cron service started", "jobs", s.JobCount())

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Cron service stopped")
			return
		case <-ticker.C:
			s.onTimer(ctx)
		}
	}
}

func (s *Service) onTimer(ctx context.Context) {
	s.mu.Lock()
	now := s.now()
	var due []*Job
	for _, j := range s.jobs {
		if j.Enabled && !j.State.NextRunAt.IsZero() && !now.Before(j.State.NextRunAt) {
			due = append(due, j)
		}
	}
	s.mu.Unlock()

	for _, job := range due {
		s.executeJob(ctx, job)
	}
}

func (s *Service) executeJob(ctx context.Context, job *Job) {
	start := s.now()
	slog.Info("Cron: executing job", "name", job.Name, "id", job.ID)

	content, err := s.onJob(ctx, job)
	if err == nil && content != "" && s.bus != nil {
		err = s.bus.PublishOutbound(ctx, &bus.OutboundMessage{
			Channel: job.Channel,
			ChatID:  job.To,
			Content: content,
			Kind:    bus.KindText,
		})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		slog.Error("Cron: job failed", "name", job.Name, "err", err)
		job.State.LastStatus = "error"
		job.State.LastError = err.Error()
	} else {
		slog.Info("Cron: job completed", "name", job.Name)
		job.State.LastStatus = "ok"
		job.State.LastError = ""
	}
	job.State.LastRunAt = start
	job.State.NextRunAt = computeNextRun(job.Schedule, s.now())
}

// AddJob schedules a recurring job that posts to channel/to.
func (s *Service) AddJob(name string, schedule Schedule, channel, to string) (*Job, error) {
	if err := ValidateSchedule(schedule); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	job := &Job{
		ID:       shortID(),
		Name:     name,
		Enabled:  true,
		Schedule: schedule,
		Channel:  channel,
		To:       to,
		State: JobState{
			NextRunAt: computeNextRun(schedule, s.now()),
		},
	}
	s.jobs = append(s.jobs, job)
	slog.Info("Cron: added job", "name", name, "id", job.ID, "next", job.State.NextRunAt)
	return job, nil
}

// ListJobs returns copies of all jobs, soonest first.
func (s *Service) ListJobs() []Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		result = append(result, *j)
	}
	sort.Slice(result, func(i, j int) bool {
		a, b := result[i].State.NextRunAt, result[j].State.NextRunAt
		if a.IsZero() {
			return false
		}
		if b.IsZero() {
			return true
		}
		return a.Before(b)
	})
	return result
}

// JobCount returns the number of jobs.
func (s *Service) JobCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// ValidateSchedule reports whether sched can be scheduled.
func ValidateSchedule(sched Schedule) error {
	g := gronx.New()
	if !g.IsValid(sched.Expr) {
		return fmt.Errorf("invalid cron expression %q", sched.Expr)
	}
	if sched.TZ != "" {
		if _, err := time.LoadLocation(sched.TZ); err != nil {
			return fmt.Errorf("invalid timezone %q: %w", sched.TZ, err)
		}
	}
	return nil
}

// computeNextRun returns the next run after now, or the zero time when the
// schedule cannot fire.
func computeNextRun(sched Schedule, now time.Time) time.Time {
	loc := time.Local
	if sched.TZ != "" {
		if l, err := time.LoadLocation(sched.TZ); err == nil {
			loc = l
		}
	}
	next, err := gronx.NextTickAfter(sched.Expr, now.In(loc), false)
	if err != nil {
		slog.Warn("Invalid cron expression", "expr", sched.Expr, "err", err)
		return time.Time{}
	}
	return next
}

func shortID() string {
	b := make([]byte, 4)
	rand.Read(b)
	return hex.EncodeToString(b)
}

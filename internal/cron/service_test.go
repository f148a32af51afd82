package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joebot/nightslayer-bot/internal/bus"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestValidateSchedule(t *testing.T) {
	assert.NoError(t, ValidateSchedule(Schedule{Expr: "0 9 * * *"}))
	assert.NoError(t, ValidateSchedule(Schedule{Expr: "0 18 * * *", TZ: "America/Chicago"}))

	assert.Error(t, ValidateSchedule(Schedule{Expr: "* * *"}))
	assert.Error(t, ValidateSchedule(Schedule{Expr: ""}))
	assert.Error(t, ValidateSchedule(Schedule{Expr: "0 9 * * *", TZ: "Mars/Olympus"}))
}

func TestNextCronRun(t *testing.T) {
	now := time.Date(2026, 2, 15, 8, 0, 0, 0, time.UTC)
	next := computeNextRun(Schedule{Expr: "0 9 * * *", TZ: "UTC"}, now)
	require.False(t, next.IsZero())
	assert.Equal(t, 9, next.Hour())
	assert.Equal(t, 0, next.Minute())
	assert.True(t, next.After(now))
}

func TestNextCronRunEvery15Min(t *testing.T) {
	now := time.Date(2026, 2, 15, 10, 7, 30, 0, time.UTC)
	next := computeNextRun(Schedule{Expr: "*/15 * * * *", TZ: "UTC"}, now)
	require.False(t, next.IsZero())
	assert.Equal(t, 15, next.Minute())
}

func TestNextCronRunInZone(t *testing.T) {
	chicago, err := time.LoadLocation("America/Chicago")
	require.NoError(t, err)

	// 12:00 UTC is 06:00 in Chicago in February.
	now := time.Date(2026, 2, 15, 12, 0, 0, 0, time.UTC)
	next := computeNextRun(Schedule{Expr: "0 18 * * *", TZ: "America/Chicago"}, now)
	require.False(t, next.IsZero())
	local := next.In(chicago)
	assert.Equal(t, 15, local.Day())
	assert.Equal(t, 18, local.Hour())
	assert.Equal(t, 0, local.Minute())
}

func TestDueJobPostsToBus(t *testing.T) {
	b := bus.NewMessageBus()
	now := time.Date(2026, 2, 15, 8, 30, 0, 0, time.UTC)

	var fired []string
	s := NewService(b, func(_ context.Context, job *Job) (string, error) {
		fired = append(fired, job.Name)
		return "**Level Check — Nightslayer**\n", nil
	})
	s.now = fixedClock(now)

	job, err := s.AddJob("levelcheck", Schedule{Expr: "0 * * * *", TZ: "UTC"}, "discord", "chan1")
	require.NoError(t, err)
	assert.Equal(t, 9, job.State.NextRunAt.UTC().Hour())

	s.onTimer(context.Background())
	assert.Empty(t, fired, "not due yet")

	s.now = fixedClock(time.Date(2026, 2, 15, 9, 0, 5, 0, time.UTC))
	s.onTimer(context.Background())
	assert.Equal(t, []string{"levelcheck"}, fired)

	out := <-b.Outbound
	assert.Equal(t, "discord", out.Channel)
	assert.Equal(t, "chan1", out.ChatID)
	assert.Equal(t, "**Level Check — Nightslayer**\n", out.Content)

	jobs := s.ListJobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, job.ID, jobs[0].ID)
	assert.Equal(t, "ok", jobs[0].State.LastStatus)
	assert.Equal(t, 10, jobs[0].State.NextRunAt.UTC().Hour())
	assert.Equal(t, 0, jobs[0].State.NextRunAt.Minute())
}

func TestFailedJobRecordsError(t *testing.T) {
	b := bus.NewMessageBus()
	now := time.Date(2026, 2, 15, 8, 30, 0, 0, time.UTC)
	s := NewService(b, func(context.Context, *Job) (string, error) {
		return "", errors.New("battle.net down")
	})
	s.now = fixedClock(now)
	_, err := s.AddJob("levelcheck", Schedule{Expr: "0 * * * *", TZ: "UTC"}, "discord", "chan1")
	require.NoError(t, err)

	s.now = fixedClock(now.Add(time.Hour))
	s.onTimer(context.Background())

	jobs := s.ListJobs()
	assert.Equal(t, "error", jobs[0].State.LastStatus)
	assert.Equal(t, "battle.net down", jobs[0].State.LastError)
	assert.Empty(t, b.Outbound)
}

func TestAddJobRejectsInvalidSchedule(t *testing.T) {
	s := NewService(nil, func(context.Context, *Job) (string, error) { return "", nil })
	_, err := s.AddJob("bad", Schedule{Expr: "not a cron"}, "discord", "c")
	assert.Error(t, err)
	assert.Zero(t, s.JobCount())
}

func TestListJobsSoonestFirst(t *testing.T) {
	s := NewService(nil, func(context.Context, *Job) (string, error) { return "", nil })
	s.now = fixedClock(time.Date(2026, 2, 15, 8, 30, 0, 0, time.UTC))

	_, err := s.AddJob("evening", Schedule{Expr: "0 18 * * *", TZ: "UTC"}, "discord", "c")
	require.NoError(t, err)
	_, err = s.AddJob("hourly", Schedule{Expr: "0 * * * *", TZ: "UTC"}, "discord", "c")
	require.NoError(t, err)

	jobs := s.ListJobs()
	require.Len(t, jobs, 2)
	assert.Equal(t, "hourly", jobs[0].Name)
	assert.Equal(t, "evening", jobs[1].Name)
}

func TestShortID(t *testing.T) {
	id1 := shortID()
	id2 := shortID()
	assert.Len(t, id1, 8)
	assert.NotEqual(t, id1, id2)
}

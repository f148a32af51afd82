package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joebot/nightslayer-bot/internal/config"
)

func TestRootCommand(t *testing.T) {
	cmd := newRootCommand()
	require.NotNil(t, cmd)

	assert.Equal(t, "nightslayer-bot", cmd.Use)
	assert.NotNil(t, cmd.PersistentFlags().Lookup("env-file"))

	for _, name := range []string{"run", "console", "status", "version"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, sub.Name())
	}

	console, _, err := cmd.Find([]string{"console"})
	require.NoError(t, err)
	assert.NotNil(t, console.Flags().Lookup("message"))
	assert.NotNil(t, console.Flags().Lookup("log-file"))

	run, _, err := cmd.Find([]string{"gateway"})
	require.NoError(t, err)
	assert.Equal(t, "run", run.Name())
}

func newTestApp(t *testing.T) *app {
	t.Helper()
	cfg, err := config.ParseFrom(map[string]string{
		"DATABASE_PATH": filepath.Join(t.TempDir(), "bot.db"),
	})
	require.NoError(t, err)
	require.NoError(t, cfg.ValidateOffline())

	a, err := newApp(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

func TestAppAnswersWithoutModel(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()
	assert.Empty(t, a.model)

	reply, err := a.bot.ProcessDirect(ctx, "!ping")
	require.NoError(t, err)
	assert.Equal(t, "Pong!", reply)

	reply, err = a.bot.ProcessDirect(ctx, "!hello")
	require.NoError(t, err)
	assert.Contains(t, reply, "Hello!")

	reply, err = a.bot.ProcessDirect(ctx, "@ hi there")
	require.NoError(t, err)
	assert.Contains(t, reply, "Hello!")

	reply, err = a.bot.ProcessDirect(ctx, "just chatting")
	require.NoError(t, err)
	assert.Empty(t, reply)
}

func TestAppLevelCheckWithoutBattleNet(t *testing.T) {
	a := newTestApp(t)
	report, err := a.levelCheck(context.Background())
	require.NoError(t, err)
	assert.Contains(t, report, "not configured")
}

func TestSchedulerListsLevelCheck(t *testing.T) {
	cfg, err := config.ParseFrom(map[string]string{
		"DISCORD_TOKEN":         "tok",
		"LEVELCHECK_SCHEDULE":   "0 18 * * *",
		"LEVELCHECK_TZ":         "America/Chicago",
		"LEVELCHECK_CHANNEL_ID": "123",
	})
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	s, err := newScheduler(cfg, nil, nil)
	require.NoError(t, err)
	jobs := s.ListJobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, levelCheckJob, jobs[0].Name)
	assert.Equal(t, "discord", jobs[0].Channel)
	assert.Equal(t, "123", jobs[0].To)
	assert.Equal(t, "America/Chicago", jobs[0].Schedule.TZ)
	assert.False(t, jobs[0].State.NextRunAt.IsZero())
}

func TestSchedulerEmptyWithoutSchedule(t *testing.T) {
	cfg, err := config.ParseFrom(map[string]string{"DISCORD_TOKEN": "tok"})
	require.NoError(t, err)

	s, err := newScheduler(cfg, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, s.ListJobs())
}

func TestHelpLinesFollowRegistry(t *testing.T) {
	a := newTestApp(t)
	lines := helpLines(a.commands)
	require.NotEmpty(t, lines)
	assert.Equal(t, "!help", lines[0].Usage)
	assert.Equal(t, "!ping", lines[1].Usage)
	assert.Equal(t, "Pong!", lines[1].Description)
}

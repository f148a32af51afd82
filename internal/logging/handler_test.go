package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJournalFormat(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewHandler(&buf, &Options{Level: slog.LevelDebug, Format: FormatJournal}))

	log.Error("send failed", "channel", "discord")
	log.Warn("rate limited")
	log.Info("ready")
	log.Debug("tick")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, []string{
		"<3>ERR send failed channel=discord",
		"<4>WRN rate limited",
		"<6>INF ready",
		"<7>DBG tick",
	}, lines)
}

func TestLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewHandler(&buf, &Options{Level: slog.LevelWarn, Format: FormatJournal}))

	log.Info("hidden")
	log.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestBlockAttrsRenderBelowLine(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewHandler(&buf, &Options{Format: FormatJournal}))

	log.Info("Received message", "sender", "42", "content", "line one\nline two")

	assert.Equal(t,
		"<6>INF Received message sender=42\n<6>  | line one\n<6>  | line two\n",
		buf.String())
}

func TestWithAttrsCarriesOver(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewHandler(&buf, &Options{Format: FormatText})).With("component", "bot")

	log.Info("hello")

	out := buf.String()
	assert.Contains(t, out, "INF hello component=bot")
}

func TestColorFormatUsesANSI(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewHandler(&buf, &Options{Format: FormatColor}))

	log.Error("boom")

	assert.Contains(t, buf.String(), ansiRed+"ERR"+ansiReset)
}

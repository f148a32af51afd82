package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
)

// ANSI color codes.
const (
	ansiReset  = "\033[0m"
	ansiRed    = "\033[31m"
	ansiYellow = "\033[33m"
	ansiCyan   = "\033[36m"
	ansiGray   = "\033[90m"

	padding = "  " // left padding to align with TUI header
)

// Format selects how records are rendered.
type Format string

const (
	// FormatJournal writes sd-daemon priority prefixes and no timestamp;
	// journald stamps and classifies each line itself.
	FormatJournal Format = "journal"
	// FormatText writes a full timestamp, for files and plain terminals.
	FormatText Format = "text"
	// FormatColor writes a short timestamp with ANSI colors.
	FormatColor Format = "color"
)

// Block attributes are rendered as indented blocks below the log line
// instead of inline key=value pairs.
var blockKeys = map[string]bool{
	"content": true,
	"reply":   true,
}

// Options configures a Handler.
type Options struct {
	Level  slog.Leveler
	Format Format
}

// Handler is a compact slog handler for terminals and the system journal.
type Handler struct {
	w      io.Writer
	mu     *sync.Mutex
	level  slog.Leveler
	format Format
	attrs  []slog.Attr
}

// NewHandler creates a new log handler.
func NewHandler(w io.Writer, opts *Options) *Handler {
	if opts == nil {
		opts = &Options{}
	}
	level := opts.Level
	if level == nil {
		level = slog.LevelInfo
	}
	format := opts.Format
	if format == "" {
		format = FormatText
	}
	return &Handler{
		w:      w,
		mu:     &sync.Mutex{},
		level:  level,
		format: format,
	}
}

// Setup installs a Handler writing to w as the slog default.
func Setup(w io.Writer, level slog.Level, format Format) *slog.Logger {
	logger := slog.New(NewHandler(w, &Options{Level: level, Format: format}))
	slog.SetDefault(logger)
	return logger
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	color := h.format == FormatColor
	lvl := levelLabel(r.Level)

	// Separate inline attrs from block attrs (content, reply).
	var inline string
	var blocks []string
	for _, a := range h.attrs {
		if blockKeys[a.Key] {
			blocks = append(blocks, a.Value.String())
		} else {
			inline += h.fmtAttr(a)
		}
	}
	r.Attrs(func(a slog.Attr) bool {
		if blockKeys[a.Key] {
			blocks = append(blocks, a.Value.String())
		} else {
			inline += h.fmtAttr(a)
		}
		return true
	})

	// Build main line.
	var sb strings.Builder
	switch h.format {
	case FormatJournal:
		prio := journalPriority(r.Level)
		sb.WriteString(fmt.Sprintf("%s%s %s%s\n", prio, lvl, r.Message, inline))
	case FormatColor:
		sb.WriteString(fmt.Sprintf("%s%s%s%s %s %s%s\n",
			padding,
			ansiGray, r.Time.Format("15:04:05"), ansiReset,
			colorLevel(r.Level, lvl),
			r.Message, inline))
	default:
		sb.WriteString(fmt.Sprintf("%s %s %s%s\n", r.Time.Format("2006-01-02 15:04:05"), lvl, r.Message, inline))
	}

	// Render block content below the log line. Journal lines carry the
	// record's priority so continuation lines stay grouped with it.
	for _, text := range blocks {
		for _, line := range strings.Split(text, "\n") {
			switch {
			case color:
				sb.WriteString(fmt.Sprintf("%s  %s│%s %s\n", padding, ansiGray, ansiReset, line))
			case h.format == FormatJournal:
				sb.WriteString(fmt.Sprintf("%s  | %s\n", journalPriority(r.Level), line))
			default:
				sb.WriteString(fmt.Sprintf("  | %s\n", line))
			}
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, sb.String())
	return err
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	combined := make([]slog.Attr, len(h.attrs)+len(attrs))
	copy(combined, h.attrs)
	copy(combined[len(h.attrs):], attrs)
	return &Handler{w: h.w, mu: h.mu, level: h.level, format: h.format, attrs: combined}
}

func (h *Handler) WithGroup(string) slog.Handler {
	return h
}

func (h *Handler) fmtAttr(a slog.Attr) string {
	if h.format == FormatColor {
		return fmt.Sprintf(" %s%s%s=%s", ansiGray, a.Key, ansiReset, a.Value.String())
	}
	return fmt.Sprintf(" %s=%s", a.Key, a.Value.String())
}

// journalPriority returns the sd-daemon(3) prefix for level.
func journalPriority(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "<3>"
	case level >= slog.LevelWarn:
		return "<4>"
	case level >= slog.LevelInfo:
		return "<6>"
	default:
		return "<7>"
	}
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERR"
	case level >= slog.LevelWarn:
		return "WRN"
	case level >= slog.LevelInfo:
		return "INF"
	default:
		return "DBG"
	}
}

func colorLevel(level slog.Level, label string) string {
	switch {
	case level >= slog.LevelError:
		return ansiRed + label + ansiReset
	case level >= slog.LevelWarn:
		return ansiYellow + label + ansiReset
	case level >= slog.LevelInfo:
		return ansiCyan + label + ansiReset
	default:
		return ansiGray + label + ansiReset
	}
}

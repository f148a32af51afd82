package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
)

const (
	keySystemPrompt   = "system_prompt"
	keyResponseCap    = "response_cap"
	contextModePrefix = "context_mode:"

	// DefaultResponseCap is the word cap used until one is set.
	DefaultResponseCap = 10
)

// ContextMode decides whose messages share a conversation history.
type ContextMode string

const (
	// ContextChannel shares one history among everyone in a channel.
	ContextChannel ContextMode = "channel"
	// ContextUser keeps a separate history per user in a channel.
	ContextUser ContextMode = "user"
)

// ContextKey returns the history key for a sender in a channel under mode.
func ContextKey(mode ContextMode, channelID, userID string) string {
	if mode == ContextUser {
		return channelID + ":" + userID
	}
	return channelID
}

// Setting returns the value stored under key, or ErrNotFound.
func (s *Store) Setting(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get setting %s: %w", key, err)
	}
	return value, nil
}

// SetSetting upserts a setting.
func (s *Store) SetSetting(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("set setting %s: %w", key, err)
	}
	return nil
}

// SystemPrompt returns the configured system prompt; empty if unset.
func (s *Store) SystemPrompt(ctx context.Context) (string, error) {
	v, err := s.Setting(ctx, keySystemPrompt)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	return v, err
}

// SetSystemPrompt replaces the system prompt.
func (s *Store) SetSystemPrompt(ctx context.Context, prompt string) error {
	return s.SetSetting(ctx, keySystemPrompt, prompt)
}

// ResponseCap returns the reply word cap. Missing or unparsable values
// yield DefaultResponseCap.
func (s *Store) ResponseCap(ctx context.Context) int {
	v, err := s.Setting(ctx, keyResponseCap)
	if err != nil {
		return DefaultResponseCap
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return DefaultResponseCap
	}
	return n
}

// SetResponseCap stores the reply word cap.
func (s *Store) SetResponseCap(ctx context.Context, n int) error {
	return s.SetSetting(ctx, keyResponseCap, strconv.Itoa(n))
}

// ContextMode returns the mode for a channel, ContextChannel by default.
func (s *Store) ContextMode(ctx context.Context, channelID string) (ContextMode, error) {
	v, err := s.Setting(ctx, contextModePrefix+channelID)
	if errors.Is(err, ErrNotFound) {
		return ContextChannel, nil
	}
	if err != nil {
		return ContextChannel, err
	}
	if ContextMode(v) == ContextUser {
		return ContextUser, nil
	}
	return ContextChannel, nil
}

// SetContextMode stores the mode for a channel.
func (s *Store) SetContextMode(ctx context.Context, channelID string, mode ContextMode) error {
	return s.SetSetting(ctx, contextModePrefix+channelID, string(mode))
}

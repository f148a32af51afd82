package command

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/joebot/nightslayer-bot/internal/store"
)

const (
	capName = "!cap"
	minCap  = 1
	maxCap  = 500
)

type systemPromptCommand struct {
	store Store
}

func (*systemPromptCommand) Name() string        { return "!systemprompt" }
func (*systemPromptCommand) Usage() string       { return "!systemprompt [text]" }
func (*systemPromptCommand) Description() string { return "View or set the system prompt" }

func (c *systemPromptCommand) Execute(ctx context.Context, req Request) (string, error) {
	if req.Args == "" {
		current, err := c.store.SystemPrompt(ctx)
		if err != nil {
			return "", err
		}
		return "**Current system prompt:**\n" + current, nil
	}
	if err := c.store.SetSystemPrompt(ctx, req.Args); err != nil {
		slog.Error("Failed to update system prompt", "err", err)
		return "Failed to update system prompt.", nil
	}
	slog.Info("System prompt updated", "user", req.UserName, "content", req.Args)
	return "System prompt updated!", nil
}

type capCommand struct {
	store Store
}

func (*capCommand) Name() string        { return capName }
func (*capCommand) Usage() string       { return "!cap <1-500>" }
func (*capCommand) Description() string { return "Set response word cap" }

func (c *capCommand) Execute(ctx context.Context, req Request) (string, error) {
	if req.Args == "" {
		return fmt.Sprintf("Response word cap is currently **%d**. Usage: `!cap <%d-%d>`", c.store.ResponseCap(ctx), minCap, maxCap), nil
	}
	n, err := strconv.Atoi(req.Args)
	if err != nil || n < minCap || n > maxCap {
		return fmt.Sprintf("Cap must be a number between %d and %d.", minCap, maxCap), nil
	}
	if err := c.store.SetResponseCap(ctx, n); err != nil {
		slog.Error("Failed to set response cap", "err", err)
		return "Failed to save cap.", nil
	}
	slog.Info("Response cap updated", "user", req.UserName, "cap", n)
	return fmt.Sprintf("Response word cap set to **%d**.", n), nil
}

type clearCommand struct {
	store Store
}

func (*clearCommand) Name() string        { return "!clear" }
func (*clearCommand) Usage() string       { return "!clear" }
func (*clearCommand) Description() string { return "Clear conversation history" }

func (c *clearCommand) Execute(ctx context.Context, req Request) (string, error) {
	mode, err := c.store.ContextMode(ctx, req.ChannelID)
	if err != nil {
		slog.Warn("Context mode lookup failed, using channel", "chat", req.ChannelID, "err", err)
		mode = store.ContextChannel
	}
	n, err := c.store.ClearMessages(ctx, store.ContextKey(mode, req.ChannelID, req.UserID))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Cleared %d messages.", n), nil
}

type contextModeCommand struct {
	store Store
	mode  store.ContextMode
}

func (c *contextModeCommand) Name() string {
	if c.mode == store.ContextUser {
		return "!contextuser"
	}
	return "!contextchannel"
}

func (c *contextModeCommand) Usage() string { return c.Name() }

func (c *contextModeCommand) Description() string {
	if c.mode == store.ContextUser {
		return "Separate history per user"
	}
	return "Shared history per channel"
}

func (c *contextModeCommand) Execute(ctx context.Context, req Request) (string, error) {
	if err := c.store.SetContextMode(ctx, req.ChannelID, c.mode); err != nil {
		return "", err
	}
	if c.mode == store.ContextUser {
		return "Context mode set to **user** — everyone gets their own history here.", nil
	}
	return "Context mode set to **channel** — everyone shares history here.", nil
}

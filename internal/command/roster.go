package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/joebot/nightslayer-bot/internal/wow"
)

const (
	notConfiguredReply = "Battle.net API not configured."
	noCharactersReply  = "No characters tracked. Use `!addcharacter <name>` to add one."
)

// lookupError renders a failed character lookup for chat.
func lookupError(err error, name, realm string) string {
	switch {
	case errors.Is(err, wow.ErrCharacterNotFound):
		return fmt.Sprintf("Character **%s** not found on %s.", name, realm)
	case errors.Is(err, wow.ErrNotConfigured):
		return notConfiguredReply
	default:
		return err.Error()
	}
}

type addCharacterCommand struct {
	store  Store
	armory Armory
}

func (*addCharacterCommand) Name() string        { return "!addcharacter" }
func (*addCharacterCommand) Usage() string       { return "!addcharacter <name>" }
func (*addCharacterCommand) Description() string { return "Track a WoW character" }

func (c *addCharacterCommand) Execute(ctx context.Context, req Request) (string, error) {
	if req.Args == "" {
		return "Usage: `!addcharacter <name>`", nil
	}
	if c.armory == nil || !c.armory.Enabled() {
		return notConfiguredReply, nil
	}

	req.typing()
	ch, err := c.armory.Character(ctx, req.Args)
	if err != nil {
		return lookupError(err, req.Args, c.armory.RealmName()), nil
	}

	added, err := c.store.AddCharacter(ctx, ch.Name, req.UserID)
	if err != nil {
		slog.Error("DB error adding character", "name", ch.Name, "err", err)
		return "Failed to save character.", nil
	}
	summary := fmt.Sprintf("Level %d %s", ch.Level, ch.Description())
	if !added {
		return fmt.Sprintf("**%s** is already tracked — %s", ch.Name, summary), nil
	}
	slog.Info("Character tracked", "name", ch.Name, "user", req.UserName)
	return fmt.Sprintf("Now tracking **%s** — %s", ch.Name, summary), nil
}

type removeCharacterCommand struct {
	store Store
}

func (*removeCharacterCommand) Name() string        { return "!removecharacter" }
func (*removeCharacterCommand) Usage() string       { return "!removecharacter <name>" }
func (*removeCharacterCommand) Description() string { return "Stop tracking a character" }

func (c *removeCharacterCommand) Execute(ctx context.Context, req Request) (string, error) {
	if req.Args == "" {
		return "Usage: `!removecharacter <name>`", nil
	}
	removed, err := c.store.RemoveCharacter(ctx, req.Args)
	if err != nil {
		slog.Error("DB error removing character", "name", req.Args, "err", err)
		return "Failed to remove character.", nil
	}
	if !removed {
		return fmt.Sprintf("**%s** is not being tracked.", req.Args), nil
	}
	return fmt.Sprintf("Removed **%s** from tracking.", req.Args), nil
}

type levelCheckCommand struct {
	reporter *LevelReporter
	insults  bool
}

func (c *levelCheckCommand) Name() string {
	if c.insults {
		return "!levelcheck"
	}
	return "!levelcheckraw"
}

func (c *levelCheckCommand) Usage() string { return c.Name() }

func (c *levelCheckCommand) Description() string {
	if c.insults {
		return "Check levels of tracked characters (with insults)"
	}
	return "Check levels without insults"
}

func (c *levelCheckCommand) Execute(ctx context.Context, req Request) (string, error) {
	return c.reporter.Report(ctx, c.insults, req.typing)
}

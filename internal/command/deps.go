package command

import (
	"context"

	"github.com/joebot/nightslayer-bot/internal/store"
	"github.com/joebot/nightslayer-bot/internal/wow"
)

// DefaultGreeting is the bot's canned hello.
const DefaultGreeting = "Hello! IT'S CHRISTINITH! ARE YOU STUPID OR ARE YOU DEAF?!"

// Store is the persistence the built-in commands use.
type Store interface {
	SystemPrompt(ctx context.Context) (string, error)
	SetSystemPrompt(ctx context.Context, prompt string) error
	ResponseCap(ctx context.Context) int
	SetResponseCap(ctx context.Context, n int) error
	ContextMode(ctx context.Context, channelID string) (store.ContextMode, error)
	SetContextMode(ctx context.Context, channelID string, mode store.ContextMode) error
	ClearMessages(ctx context.Context, contextKey string) (int64, error)
	AddCharacter(ctx context.Context, name, addedBy string) (bool, error)
	RemoveCharacter(ctx context.Context, name string) (bool, error)
	Characters(ctx context.Context) ([]string, error)
}

// Armory looks characters up. *wow.Client satisfies it, including a nil
// client, which reports itself disabled.
type Armory interface {
	Enabled() bool
	RealmName() string
	Character(ctx context.Context, name string) (*wow.Character, error)
	Characters(ctx context.Context, names []string) []wow.Result
}

// Oracle answers one-off prompts. *chat.Service satisfies it.
type Oracle interface {
	OneShot(ctx context.Context, systemPrompt, text string) (string, error)
}

// Deps are the services the built-in commands run against.
type Deps struct {
	Store  Store
	Armory Armory
	// Oracle is nil when no model is configured.
	Oracle   Oracle
	Greeting string
}

// RegisterBuiltins adds every built-in command to r.
func RegisterBuiltins(r *Registry, d Deps) {
	if d.Greeting == "" {
		d.Greeting = DefaultGreeting
	}
	reporter := NewLevelReporter(d.Store, d.Armory, d.Oracle)

	r.Register(&helpCommand{registry: r, store: d.Store})
	r.Register(pingCommand{})
	r.Register(helloCommand{greeting: d.Greeting})
	r.Register(&systemPromptCommand{store: d.Store})
	r.Register(&capCommand{store: d.Store})
	r.Register(&clearCommand{store: d.Store})
	r.Register(&contextModeCommand{store: d.Store, mode: store.ContextChannel})
	r.Register(&contextModeCommand{store: d.Store, mode: store.ContextUser})
	r.Register(&addCharacterCommand{store: d.Store, armory: d.Armory})
	r.Register(&removeCharacterCommand{store: d.Store})
	r.Register(&levelCheckCommand{reporter: reporter, insults: true})
	r.Register(&levelCheckCommand{reporter: reporter})
}

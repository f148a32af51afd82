package command

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Request is one invocation of a command.
type Request struct {
	// Args is the text after the command word, trimmed.
	Args      string
	ChannelID string
	UserID    string
	UserName  string
	// Typing, when set, is called before slow work so the user sees the
	// bot typing.
	Typing func()
}

func (r Request) typing() {
	if r.Typing != nil {
		r.Typing()
	}
}

// Command is a bang-prefixed chat command.
type Command interface {
	// Name is the literal trigger, including the "!".
	Name() string
	// Usage is the trigger with its argument synopsis.
	Usage() string
	Description() string
	Execute(ctx context.Context, req Request) (string, error)
}

// Registry manages command registration and execution.
type Registry struct {
	commands map[string]Command
	order    []string
}

// NewRegistry creates an empty command registry.
func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]Command)}
}

// Register adds a command. A later command with the same name replaces the
// earlier one but keeps its position in help.
func (r *Registry) Register(c Command) {
	if _, ok := r.commands[c.Name()]; !ok {
		r.order = append(r.order, c.Name())
	}
	r.commands[c.Name()] = c
}

// Commands returns registered commands in registration order.
func (r *Registry) Commands() []Command {
	out := make([]Command, 0, len(r.order))
	for _, n := range r.order {
		out = append(out, r.commands[n])
	}
	return out
}

// Match splits content into a registered command and its arguments. The
// first word must equal the command name exactly.
func (r *Registry) Match(content string) (Command, string, bool) {
	name, args := Split(content)
	c := r.commands[name]
	if c == nil {
		return nil, "", false
	}
	return c, args, true
}

// Split returns the first whitespace-separated word of content and the
// trimmed remainder.
func Split(content string) (string, string) {
	content = strings.TrimSpace(content)
	i := strings.IndexFunc(content, isSpace)
	if i < 0 {
		return content, ""
	}
	return content[:i], strings.TrimSpace(content[i:])
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

// Execute runs c. Errors are logged and turned into a short reply so the
// caller always has something to send.
func (r *Registry) Execute(ctx context.Context, c Command, req Request) string {
	reply, err := c.Execute(ctx, req)
	if err != nil {
		slog.Error("Command failed", "command", c.Name(), "user", req.UserName, "err", err)
		return fmt.Sprintf("Sorry, `%s` failed.", c.Name())
	}
	return reply
}

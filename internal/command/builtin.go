package command

import (
	"context"
	"fmt"
	"strings"
)

type pingCommand struct{}

func (pingCommand) Name() string        { return "!ping" }
func (pingCommand) Usage() string       { return "!ping" }
func (pingCommand) Description() string { return "Pong!" }
func (pingCommand) Execute(context.Context, Request) (string, error) {
	return "Pong!", nil
}

type helloCommand struct {
	greeting string
}

func (helloCommand) Name() string        { return "!hello" }
func (helloCommand) Usage() string       { return "!hello" }
func (helloCommand) Description() string { return "Greet the bot" }
func (c helloCommand) Execute(context.Context, Request) (string, error) {
	return c.greeting, nil
}

type helpCommand struct {
	registry *Registry
	store    Store
}

func (*helpCommand) Name() string        { return "!help" }
func (*helpCommand) Usage() string       { return "!help" }
func (*helpCommand) Description() string { return "Show this message" }

func (c *helpCommand) Execute(ctx context.Context, _ Request) (string, error) {
	var sb strings.Builder
	sb.WriteString("**Commands:**\n")
	for _, cmd := range c.registry.Commands() {
		fmt.Fprintf(&sb, "`%s` — %s", cmd.Usage(), cmd.Description())
		if cmd.Name() == capName {
			fmt.Fprintf(&sb, " (currently **%d**)", c.store.ResponseCap(ctx))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\nMention me to chat!")
	return sb.String(), nil
}

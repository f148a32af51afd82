// Package bot routes inbound chat messages to commands and the model.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/joebot/nightslayer-bot/internal/bus"
	"github.com/joebot/nightslayer-bot/internal/command"
	"github.com/joebot/nightslayer-bot/internal/store"
)

const (
	// MetaBotID is the inbound metadata key carrying the bot's own user ID.
	MetaBotID = "bot_id"

	maxReplyRunes  = 2000
	truncatedRunes = 1990
	emptyMention   = "You mentioned me but didn't say anything!"
	consoleChannel = "console"
	defaultWorkers = 8
)

// Asker holds a conversation with the model. *chat.Service satisfies it.
type Asker interface {
	Ask(ctx context.Context, contextKey, text string) (string, error)
}

// ContextModes resolves how history is shared in a channel.
type ContextModes interface {
	ContextMode(ctx context.Context, channelID string) (store.ContextMode, error)
}

// Bot dispatches inbound messages.
type Bot struct {
	bus      *bus.MessageBus
	commands *command.Registry
	chat     Asker
	modes    ContextModes
	greeting string
	workers  int
}

// Config holds the Bot's collaborators.
type Config struct {
	Bus      *bus.MessageBus
	Commands *command.Registry
	// Chat is nil when no model is configured; mentions then get the greeting.
	Chat     Asker
	Modes    ContextModes
	Greeting string
	Workers  int
}

// New creates a Bot.
func New(cfg Config) *Bot {
	if cfg.Greeting == "" {
		cfg.Greeting = command.DefaultGreeting
	}
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkers
	}
	if cfg.Commands == nil {
		cfg.Commands = command.NewRegistry()
	}
	return &Bot{
		bus:      cfg.Bus,
		commands: cfg.Commands,
		chat:     cfg.Chat,
		modes:    cfg.Modes,
		greeting: cfg.Greeting,
		workers:  cfg.Workers,
	}
}

// Run consumes the inbound queue until ctx is cancelled. Each message is
// handled on its own goroutine, at most Workers at a time.
func (b *Bot) Run(ctx context.Context) {
	slog.Info("Dispatcher started", "workers", b.workers)

	var g errgroup.Group
	g.SetLimit(b.workers)
	defer g.Wait()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Dispatcher stopping")
			return
		case msg := <-b.bus.Inbound:
			g.Go(func() error {
				b.process(ctx, msg)
				return nil
			})
		}
	}
}

func (b *Bot) process(ctx context.Context, msg *bus.InboundMessage) {
	resp, err := b.Handle(ctx, msg)
	if err != nil {
		slog.Error("Processing message", "channel", msg.Channel, "sender", msg.SenderID, "err", err)
		return
	}
	if resp == nil {
		return
	}
	if err := b.bus.PublishOutbound(ctx, resp); err != nil {
		slog.Warn("Reply dropped", "chat", resp.ChatID, "err", err)
	}
}

// Handle decides the reply to msg. It returns nil when the message is
// neither a mention of the bot nor a known command.
func (b *Bot) Handle(ctx context.Context, msg *bus.InboundMessage) (*bus.OutboundMessage, error) {
	if msg.Mentioned {
		slog.Info("Received message", "sender", msg.SenderName, "chat", msg.ChatID, "content", msg.Content)
		reply, err := b.handleMention(ctx, msg)
		if err != nil {
			return nil, err
		}
		return b.reply(msg, reply), nil
	}

	c, args, ok := b.commands.Match(msg.Content)
	if !ok {
		return nil, nil
	}
	slog.Debug("Command", "command", c.Name(), "sender", msg.SenderName, "chat", msg.ChatID)
	reply := b.commands.Execute(ctx, c, command.Request{
		Args:      args,
		ChannelID: msg.ChatID,
		UserID:    msg.SenderID,
		UserName:  msg.SenderName,
		Typing:    func() { b.typing(ctx, msg) },
	})
	if reply == "" {
		return nil, nil
	}
	return b.reply(msg, reply), nil
}

func (b *Bot) handleMention(ctx context.Context, msg *bus.InboundMessage) (string, error) {
	if b.chat == nil {
		return b.greeting, nil
	}

	botID, _ := msg.Metadata[MetaBotID].(string)
	text := StripMentions(msg.Content, botID)
	if text == "" {
		return emptyMention, nil
	}

	mode := store.ContextChannel
	if b.modes != nil {
		m, err := b.modes.ContextMode(ctx, msg.ChatID)
		if err != nil {
			slog.Warn("Context mode lookup failed, using channel", "chat", msg.ChatID, "err", err)
		} else {
			mode = m
		}
	}

	b.typing(ctx, msg)

	answer, err := b.chat.Ask(ctx, store.ContextKey(mode, msg.ChatID, msg.SenderID), text)
	if err != nil {
		slog.Error("LLM error", "chat", msg.ChatID, "err", err)
		return fmt.Sprintf("Sorry, I couldn't get a response: %s", err), nil
	}
	return answer, nil
}

func (b *Bot) reply(msg *bus.InboundMessage, content string) *bus.OutboundMessage {
	return &bus.OutboundMessage{
		Channel:  msg.Channel,
		ChatID:   msg.ChatID,
		Content:  truncate(content),
		ReplyTo:  msg.MessageID,
		Kind:     bus.KindText,
		Metadata: msg.Metadata,
	}
}

// typing asks the channel to show a typing indicator while slow work runs.
func (b *Bot) typing(ctx context.Context, msg *bus.InboundMessage) {
	if b.bus == nil || msg.Channel == consoleChannel {
		return
	}
	err := b.bus.PublishOutbound(ctx, &bus.OutboundMessage{
		Channel: msg.Channel,
		ChatID:  msg.ChatID,
		Kind:    bus.KindTyping,
	})
	if err != nil {
		slog.Debug("Typing indicator dropped", "chat", msg.ChatID, "err", err)
	}
}

// ProcessDirect handles one line typed on the local console. A line
// starting with "@" addresses the bot the way a mention does.
func (b *Bot) ProcessDirect(ctx context.Context, text string) (string, error) {
	msg := &bus.InboundMessage{
		Channel:    consoleChannel,
		SenderID:   consoleChannel,
		SenderName: consoleChannel,
		ChatID:     consoleChannel,
		Content:    strings.TrimSpace(text),
	}
	if strings.HasPrefix(msg.Content, "@") {
		msg.Mentioned = true
		_, msg.Content = command.Split(msg.Content)
	}

	resp, err := b.Handle(ctx, msg)
	if err != nil {
		return "", err
	}
	if resp == nil {
		return "", nil
	}
	return resp.Content, nil
}

// truncate keeps replies under the gateway's message size limit.
func truncate(s string) string {
	if utf8.RuneCountInString(s) <= maxReplyRunes {
		return s
	}
	return string([]rune(s)[:truncatedRunes]) + "..."
}

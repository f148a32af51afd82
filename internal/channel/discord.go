package channel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/joebot/nightslayer-bot/internal/bot"
	"github.com/joebot/nightslayer-bot/internal/bus"
	"github.com/joebot/nightslayer-bot/internal/config"
)

// DiscordName is the bus channel name of the Discord gateway.
const DiscordName = "discord"

const (

	intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsMessageContent

	typingRefresh = 8 * time.Second
	typingMax     = 2 * time.Minute
)

// restClient is the part of the discordgo REST API used for sending.
type restClient interface {
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelTyping(channelID string, options ...discordgo.RequestOption) error
}

// Discord connects to the Discord gateway through discordgo. Reconnects
// are handled by the session itself.
type Discord struct {
	config config.DiscordConfig
	bus    *bus.MessageBus

	// mu guards the session fields and botID.
	mu        sync.RWMutex
	session   *discordgo.Session
	rest      restClient
	runCtx    context.Context
	botID     string
	connected atomic.Bool

	typingMu     sync.Mutex
	typingCancel map[string]context.CancelFunc
}

// NewDiscord creates a new Discord channel.
func NewDiscord(cfg config.DiscordConfig, b *bus.MessageBus) *Discord {
	return &Discord{
		config:       cfg,
		bus:          b,
		runCtx:       context.Background(),
		typingCancel: make(map[string]context.CancelFunc),
	}
}

func (d *Discord) Name() string { return DiscordName }

// Start opens the gateway session and blocks until ctx is cancelled.
func (d *Discord) Start(ctx context.Context) error {
	if d.config.Token == "" {
		return errors.New("discord bot token not configured")
	}

	s, err := discordgo.New("Bot " + d.config.Token)
	if err != nil {
		return fmt.Errorf("create discord session: %w", err)
	}
	s.Identify.Intents = intents
	s.AddHandler(d.onReady)
	s.AddHandler(d.onResumed)
	s.AddHandler(d.onDisconnect)
	s.AddHandler(d.onMessageCreate)

	d.attach(ctx, s, s)

	slog.Info("Connecting to Discord gateway...")
	if err := s.Open(); err != nil {
		return fmt.Errorf("open discord session: %w", err)
	}

	<-ctx.Done()
	return nil
}

// attach installs the session Send and the handlers use.
func (d *Discord) attach(ctx context.Context, s *discordgo.Session, rest restClient) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.session = s
	d.rest = rest
	d.runCtx = ctx
}

func (d *Discord) client() (restClient, context.Context) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.rest, d.runCtx
}

// Stop cancels typing indicators and closes the gateway session.
func (d *Discord) Stop() error {
	d.typingMu.Lock()
	for _, cancel := range d.typingCancel {
		cancel()
	}
	d.typingCancel = make(map[string]context.CancelFunc)
	d.typingMu.Unlock()

	d.connected.Store(false)
	d.mu.RLock()
	s := d.session
	d.mu.RUnlock()
	if s != nil {
		return s.Close()
	}
	return nil
}

// Connected reports whether the gateway session is up.
func (d *Discord) Connected() bool {
	return d.connected.Load()
}

// Send delivers msg. Typing requests start an indicator that is refreshed
// until the next text message to the same channel.
func (d *Discord) Send(ctx context.Context, msg *bus.OutboundMessage) error {
	rest, runCtx := d.client()
	if rest == nil {
		return errors.New("discord session not started")
	}
	if msg.IsTyping() {
		d.startTyping(runCtx, rest, msg.ChatID)
		return nil
	}
	defer d.stopTyping(msg.ChatID)

	_, err := rest.ChannelMessageSendComplex(msg.ChatID, newMessageSend(msg), discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("send discord message: %w", err)
	}
	return nil
}

func newMessageSend(msg *bus.OutboundMessage) *discordgo.MessageSend {
	send := &discordgo.MessageSend{
		Content: msg.Content,
		AllowedMentions: &discordgo.MessageAllowedMentions{
			Parse:       []discordgo.AllowedMentionType{discordgo.AllowedMentionTypeUsers},
			RepliedUser: false,
		},
	}
	if msg.ReplyTo != "" {
		send.Reference = &discordgo.MessageReference{
			MessageID: msg.ReplyTo,
			ChannelID: msg.ChatID,
		}
	}
	return send
}

func (d *Discord) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	if r.User != nil {
		d.mu.Lock()
		d.botID = r.User.ID
		d.mu.Unlock()
		slog.Info(fmt.Sprintf("%s is connected and ready!", r.User.Username))
	}
	d.connected.Store(true)
}

func (d *Discord) onResumed(*discordgo.Session, *discordgo.Resumed) {
	slog.Info("Discord gateway session resumed")
	d.connected.Store(true)
}

func (d *Discord) onDisconnect(*discordgo.Session, *discordgo.Disconnect) {
	slog.Warn("Discord gateway disconnected")
	d.connected.Store(false)
}

func (d *Discord) onMessageCreate(_ *discordgo.Session, m *discordgo.MessageCreate) {
	msg := d.toInbound(m.Message)
	if msg == nil {
		return
	}
	_, runCtx := d.client()
	if err := d.bus.PublishInbound(runCtx, msg); err != nil {
		slog.Debug("Inbound message dropped", "chat", msg.ChatID, "err", err)
	}
}

// toInbound converts a gateway message. It returns nil for messages the bot
// must ignore: other bots (itself included) and senders outside the allow list.
func (d *Discord) toInbound(m *discordgo.Message) *bus.InboundMessage {
	if m == nil || m.Author == nil || m.Author.Bot {
		return nil
	}
	if m.Author.ID == "" || m.ChannelID == "" {
		return nil
	}
	if !IsAllowed(m.Author.ID, d.config.AllowFrom) {
		slog.Debug("Sender not allowed", "sender", m.Author.ID)
		return nil
	}

	d.mu.RLock()
	botID := d.botID
	d.mu.RUnlock()

	ts := m.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	return &bus.InboundMessage{
		Channel:    DiscordName,
		SenderID:   m.Author.ID,
		SenderName: m.Author.Username,
		ChatID:     m.ChannelID,
		GuildID:    m.GuildID,
		MessageID:  m.ID,
		Content:    m.Content,
		Mentioned:  mentionsUser(m, botID),
		Timestamp:  ts,
		Metadata:   map[string]any{bot.MetaBotID: botID},
	}
}

func mentionsUser(m *discordgo.Message, userID string) bool {
	if userID == "" {
		return false
	}
	for _, u := range m.Mentions {
		if u != nil && u.ID == userID {
			return true
		}
	}
	return bot.MentionsBot(m.Content, userID)
}

func (d *Discord) startTyping(runCtx context.Context, rest restClient, channelID string) {
	d.stopTyping(channelID)

	typingCtx, cancel := context.WithTimeout(runCtx, typingMax)
	d.typingMu.Lock()
	d.typingCancel[channelID] = cancel
	d.typingMu.Unlock()

	go func() {
		defer cancel()
		for {
			if err := rest.ChannelTyping(channelID, discordgo.WithContext(typingCtx)); err != nil && typingCtx.Err() == nil {
				slog.Debug("Typing indicator failed", "chat", channelID, "err", err)
			}
			select {
			case <-typingCtx.Done():
				return
			case <-time.After(typingRefresh):
			}
		}
	}()
}

func (d *Discord) stopTyping(channelID string) {
	d.typingMu.Lock()
	defer d.typingMu.Unlock()
	if cancel, ok := d.typingCancel[channelID]; ok {
		cancel()
		delete(d.typingCancel, channelID)
	}
}

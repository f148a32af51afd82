package bus

import "time"

// InboundMessage is a chat message received from a channel.
type InboundMessage struct {
	Channel    string
	SenderID   string
	SenderName string
	ChatID     string
	GuildID    string
	MessageID  string
	Content    string
	// Mentioned is set when the message addresses the bot directly.
	Mentioned  bool
	Timestamp  time.Time
	Metadata   map[string]any
}

// OutboundKind tells a channel what to do with an OutboundMessage.
type OutboundKind string

const (
	KindText   OutboundKind = "text"
	KindTyping OutboundKind = "typing"
)

// OutboundMessage is a message to send to a channel.
type OutboundMessage struct {
	Channel  string
	ChatID   string
	Content  string
	ReplyTo  string
	Kind     OutboundKind
	Metadata map[string]any
}

// IsTyping reports whether msg only asks for a typing indicator.
func (m *OutboundMessage) IsTyping() bool {
	return m.Kind == KindTyping
}

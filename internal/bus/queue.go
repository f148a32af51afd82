package bus

import (
	"context"
	"log/slog"
	"sync"
)

// OutboundHandler is a callback for outbound messages on a specific channel.
type OutboundHandler func(ctx context.Context, msg *OutboundMessage) error

// MessageBus decouples chat channels from the dispatcher using Go channels.
type MessageBus struct {
	Inbound  chan *InboundMessage
	Outbound chan *OutboundMessage

	mu          sync.RWMutex
	subscribers map[string][]OutboundHandler
}

// NewMessageBus creates a new message bus with buffered channels.
func NewMessageBus() *MessageBus {
	return &MessageBus{
		Inbound:     make(chan *InboundMessage, 64),
		Outbound:    make(chan *OutboundMessage, 64),
		subscribers: make(map[string][]OutboundHandler),
	}
}

// PublishInbound hands a received message to the dispatcher. It gives up
// when ctx is done.
func (b *MessageBus) PublishInbound(ctx context.Context, msg *InboundMessage) error {
	select {
	case b.Inbound <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PublishOutbound queues a reply for delivery. It gives up when ctx is done.
func (b *MessageBus) PublishOutbound(ctx context.Context, msg *OutboundMessage) error {
	if msg.Kind == "" {
		msg.Kind = KindText
	}
	select {
	case b.Outbound <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Subscribe registers a handler for outbound messages on a specific channel.
func (b *MessageBus) Subscribe(channel string, handler OutboundHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[channel] = append(b.subscribers[channel], handler)
}

// DispatchOutbound reads from the outbound queue and dispatches to subscribers.
// Delivery is best effort: failures are logged and the message is dropped.
// Blocks until ctx is cancelled.
func (b *MessageBus) DispatchOutbound(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-b.Outbound:
			b.dispatch(ctx, msg)
		}
	}
}

func (b *MessageBus) dispatch(ctx context.Context, msg *OutboundMessage) {
	b.mu.RLock()
	handlers := b.subscribers[msg.Channel]
	b.mu.RUnlock()

	if len(handlers) == 0 {
		slog.Warn("No subscriber for outbound message", "channel", msg.Channel, "chat", msg.ChatID)
		return
	}
	for _, h := range handlers {
		if err := h(ctx, msg); err != nil {
			slog.Error("Error sending message", "channel", msg.Channel, "chat", msg.ChatID, "kind", msg.Kind, "err", err)
		}
	}
}

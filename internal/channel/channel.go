package channel

import (
	"context"
	"slices"

	"github.com/joebot/nightslayer-bot/internal/bus"
)

// Channel is the interface for chat platform integrations.
type Channel interface {
	Name() string
	Start(ctx context.Context) error
	Stop() error
	Send(ctx context.Context, msg *bus.OutboundMessage) error
	// Connected reports whether the channel currently holds a live connection.
	Connected() bool
}

// IsAllowed checks if a sender is in the allow list.
// Empty allow list means everyone is allowed.
func IsAllowed(senderID string, allowList []string) bool {
	return len(allowList) == 0 || slices.Contains(allowList, senderID)
}

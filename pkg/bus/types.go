package bus

import (
	"context"
	"time"
)

// InboundMessage is a user message arriving from a chat channel.
type InboundMessage struct {
	Channel    string
	ChatID     string
	SenderID   string
	SenderName string
	Content    string
	// PersonaID is the persona the channel currently speaks as.
	PersonaID  string
	ReceivedAt time.Time
}

// OutboundMessage is a persona answer headed back to a channel.
type OutboundMessage struct {
	Channel     string
	ChatID      string
	Content     string
	PersonaID   string
	PersonaName string
}

// MessageHandler delivers an outbound message to its channel.
type MessageHandler func(ctx context.Context, msg OutboundMessage) error

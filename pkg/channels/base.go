// Package channels connects chat transports to the persona engine through
// the message bus. Each channel publishes inbound user messages and
// delivers outbound persona answers; the manager runs the respond loop
// between them.
package channels

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shadowlink/afterlife/pkg/bus"
)

type Channel interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Send(ctx context.Context, msg bus.OutboundMessage) error
	IsRunning() bool
	IsAllowed(senderID string) bool
	// SetPersona switches which persona the channel speaks as in a chat.
	SetPersona(chatID, personaID string)
	// PersonaFor returns the active persona for a chat, falling back to
	// the channel default.
	PersonaFor(chatID string) string
}

type BaseChannel struct {
	bus            *bus.MessageBus
	// running is read from channel goroutines (typing refresher, send
	// paths) while Start/Stop flip it, so it must be atomic.
	running        atomic.Bool
	name           string
	allowList      []string
	defaultPersona string
	personas       map[string]string
	personaMu      sync.RWMutex
}

func NewBaseChannel(name string, messageBus *bus.MessageBus, allowList []string, defaultPersona string) *BaseChannel {
	return &BaseChannel{
		bus:            messageBus,
		name:           name,
		allowList:      allowList,
		defaultPersona: defaultPersona,
		personas:       make(map[string]string),
	}
}

func (c *BaseChannel) Name() string {
	return c.name
}

func (c *BaseChannel) IsRunning() bool {
	return c.running.Load()
}

func (c *BaseChannel) IsAllowed(senderID string) bool {
	if len(c.allowList) == 0 {
		return true
	}

	// Extract parts from compound senderID like "123456|username"
	idPart := senderID
	userPart := ""
	if idx := strings.Index(senderID, "|"); idx > 0 {
		idPart = senderID[:idx]
		userPart = senderID[idx+1:]
	}

	for _, allowed := range c.allowList {
		candidate := strings.TrimSpace(strings.TrimPrefix(allowed, "@"))
		if candidate == "" {
			continue
		}
		if candidate == senderID || candidate == idPart || (userPart != "" && candidate == userPart) {
			return true
		}
	}

	return false
}

func (c *BaseChannel) SetPersona(chatID, personaID string) {
	c.personaMu.Lock()
	defer c.personaMu.Unlock()
	c.personas[chatID] = personaID
}

func (c *BaseChannel) PersonaFor(chatID string) string {
	c.personaMu.RLock()
	defer c.personaMu.RUnlock()
	if id, ok := c.personas[chatID]; ok {
		return id
	}
	return c.defaultPersona
}

// HandleMessage publishes a user message on the bus after the allowlist
// check, tagged with the chat's active persona.
func (c *BaseChannel) HandleMessage(senderID, senderName, chatID, content string) {
	if !c.IsAllowed(senderID) {
		return
	}
	if strings.TrimSpace(content) == "" {
		return
	}

	c.bus.PublishInbound(bus.InboundMessage{
		Channel:    c.name,
		SenderID:   senderID,
		SenderName: senderName,
		ChatID:     chatID,
		Content:    content,
		PersonaID:  c.PersonaFor(chatID),
		ReceivedAt: time.Now(),
	})
}

func (c *BaseChannel) setRunning(running bool) {
	c.running.Store(running)
}

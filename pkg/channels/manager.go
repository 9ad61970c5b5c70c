package channels

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/shadowlink/afterlife/pkg/bus"
	"github.com/shadowlink/afterlife/pkg/config"
	"github.com/shadowlink/afterlife/pkg/engine"
	"github.com/shadowlink/afterlife/pkg/logger"
	"github.com/shadowlink/afterlife/pkg/persona"
)

const personaCommand = "!persona"

// Manager owns the chat channels and the two bus loops: the respond loop
// feeding inbound messages through the engine, and the outbound
// dispatcher delivering answers back to their channel.
type Manager struct {
	channels       map[string]Channel
	bus            *bus.MessageBus
	generator      *engine.Generator
	store          *persona.Store
	defaultPersona string
	tasks          []context.CancelFunc
	mu             sync.RWMutex
}

func NewManager(cfg *config.Config, messageBus *bus.MessageBus, gen *engine.Generator, store *persona.Store) (*Manager, error) {
	m := &Manager{
		channels:       make(map[string]Channel),
		bus:            messageBus,
		generator:      gen,
		store:          store,
		defaultPersona: cfg.Personas.Default,
	}

	if err := m.initChannels(cfg); err != nil {
		return nil, err
	}

	return m, nil
}

func (m *Manager) initChannels(cfg *config.Config) error {
	logger.InfoC("channels", "Initializing channel manager")

	if strings.TrimSpace(cfg.Channels.Discord.Token) == "" {
		return fmt.Errorf("channels.discord.token is required")
	}

	discordCfg := cfg.Channels.Discord
	if discordCfg.Persona == "" {
		discordCfg.Persona = cfg.Personas.Default
	}

	discord, err := NewDiscordChannel(discordCfg, m.bus)
	if err != nil {
		return fmt.Errorf("initialize Discord channel: %w", err)
	}
	m.channels["discord"] = discord

	logger.InfoCF("channels", "Channel initialization completed", map[string]interface{}{
		"enabled_channels": len(m.channels),
	})

	return nil
}

func (m *Manager) StartAll(ctx context.Context) error {
	m.mu.RLock()
	if len(m.channels) == 0 {
		m.mu.RUnlock()
		logger.WarnC("channels", "No channels enabled")
		return nil
	}
	channelsCopy := make(map[string]Channel, len(m.channels))
	for name, channel := range m.channels {
		channelsCopy[name] = channel
	}
	m.mu.RUnlock()

	logger.InfoC("channels", "Starting all channels")

	var started []string
	var startErrors []string
	for name, channel := range channelsCopy {
		logger.InfoCF("channels", "Starting channel", map[string]interface{}{"channel": name})
		if err := channel.Start(ctx); err != nil {
			logger.ErrorCF("channels", "Failed to start channel", map[string]interface{}{
				"channel": name,
				"error":   err.Error(),
			})
			startErrors = append(startErrors, fmt.Sprintf("%s: %v", name, err))
			continue
		}
		started = append(started, name)
	}

	if len(startErrors) > 0 {
		for _, name := range started {
			if err := channelsCopy[name].Stop(ctx); err != nil {
				logger.WarnCF("channels", "Failed to stop partially-started channel", map[string]interface{}{
					"channel": name,
					"error":   err.Error(),
				})
			}
		}
		return fmt.Errorf("failed to start channels: %s", strings.Join(startErrors, "; "))
	}

	for name, channel := range channelsCopy {
		m.bus.RegisterHandler(name, channel.Send)
	}

	loopCtx, cancel := context.WithCancel(ctx)
	m.mu.Lock()
	m.cancelTasksLocked()
	m.tasks = []context.CancelFunc{cancel}
	m.mu.Unlock()

	go m.respondLoop(loopCtx)
	go m.dispatchOutbound(loopCtx)

	logger.InfoCF("channels", "All channels started", map[string]interface{}{
		"count": len(started),
	})
	return nil
}

func (m *Manager) StopAll(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	logger.InfoC("channels", "Stopping all channels")

	m.cancelTasksLocked()

	for name, channel := range m.channels {
		logger.InfoCF("channels", "Stopping channel", map[string]interface{}{
			"channel": name,
		})
		if err := channel.Stop(ctx); err != nil {
			logger.ErrorCF("channels", "Error stopping channel", map[string]interface{}{
				"channel": name,
				"error":   err.Error(),
			})
		}
	}

	logger.InfoC("channels", "All channels stopped")
	return nil
}

func (m *Manager) cancelTasksLocked() {
	for _, cancel := range m.tasks {
		cancel()
	}
	m.tasks = nil
}

// respondLoop turns each inbound user message into a persona answer.
func (m *Manager) respondLoop(ctx context.Context) {
	logger.InfoC("channels", "Respond loop started")

	for {
		// ok is false on cancellation or bus close; both mean stop.
		msg, ok := m.bus.ConsumeInbound(ctx)
		if !ok {
			logger.InfoC("channels", "Respond loop stopped")
			return
		}

		m.handleInbound(ctx, msg)
	}
}

func (m *Manager) handleInbound(ctx context.Context, msg bus.InboundMessage) {
	if answer, handled := m.handleCommand(msg); handled {
		m.bus.PublishOutbound(bus.OutboundMessage{
			Channel: msg.Channel,
			ChatID:  msg.ChatID,
			Content: answer,
		})
		return
	}

	personaID := msg.PersonaID
	if personaID == "" {
		personaID = m.defaultPersona
	}

	resp := m.generator.Respond(ctx, engine.Request{
		PersonaID: personaID,
		UserInput: msg.Content,
		SessionID: fmt.Sprintf("%s:%s", msg.Channel, msg.ChatID),
	})

	m.bus.PublishOutbound(bus.OutboundMessage{
		Channel:     msg.Channel,
		ChatID:      msg.ChatID,
		Content:     resp.Answer,
		PersonaID:   resp.PersonaID,
		PersonaName: resp.PersonaName,
	})
}

// handleCommand processes the "!persona <id>" switch; returns the reply
// text and whether the message was a command.
func (m *Manager) handleCommand(msg bus.InboundMessage) (string, bool) {
	content := strings.TrimSpace(msg.Content)
	if !strings.HasPrefix(content, personaCommand) {
		return "", false
	}

	arg := strings.TrimSpace(strings.TrimPrefix(content, personaCommand))
	if arg == "" {
		return fmt.Sprintf("Current persona: %s. Available: %s",
			m.personaFor(msg), strings.Join(m.store.ListAvailable(), ", ")), true
	}

	cfg, err := m.store.Load(arg)
	if err != nil {
		return fmt.Sprintf("Unknown persona '%s'. Available: %s",
			arg, strings.Join(m.store.ListAvailable(), ", ")), true
	}

	m.mu.RLock()
	channel, ok := m.channels[msg.Channel]
	m.mu.RUnlock()
	if ok {
		channel.SetPersona(msg.ChatID, cfg.ID)
	}

	logger.InfoCF("channels", "Persona switched", map[string]interface{}{
		"channel": msg.Channel,
		"chat":    msg.ChatID,
		"persona": cfg.ID,
	})
	return fmt.Sprintf("Now speaking as %s.", cfg.DisplayName), true
}

func (m *Manager) personaFor(msg bus.InboundMessage) string {
	if msg.PersonaID != "" {
		return msg.PersonaID
	}
	return m.defaultPersona
}

func (m *Manager) dispatchOutbound(ctx context.Context) {
	logger.InfoC("channels", "Outbound dispatcher started")

	for {
		msg, ok := m.bus.SubscribeOutbound(ctx)
		if !ok {
			logger.InfoC("channels", "Outbound dispatcher stopped")
			return
		}

		handler, ok := m.bus.GetHandler(msg.Channel)
		if !ok {
			logger.WarnCF("channels", "No delivery handler for outbound message", map[string]interface{}{
				"channel": msg.Channel,
			})
			continue
		}

		if err := handler(ctx, msg); err != nil {
			logger.ErrorCF("channels", "Error sending message to channel", map[string]interface{}{
				"channel": msg.Channel,
				"error":   err.Error(),
			})
		}
	}
}

func (m *Manager) GetChannel(name string) (Channel, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	channel, ok := m.channels[name]
	return channel, ok
}

func (m *Manager) GetStatus() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	status := make(map[string]interface{})
	for name, channel := range m.channels {
		status[name] = map[string]interface{}{
			"enabled": true,
			"running": channel.IsRunning(),
		}
	}
	return status
}

func (m *Manager) RegisterChannel(name string, channel Channel) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.channels[name] = channel
	m.bus.RegisterHandler(name, channel.Send)
}

// Package bus decouples chat channels from the response engine with two
// buffered queues: inbound user messages and outbound persona answers.
package bus

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

const (
	defaultBuffer  = 100
	publishTimeout = 100 * time.Millisecond
)

// MessageBus carries messages between channels and the engine loop.
// Publishing never blocks longer than publishTimeout; messages that cannot
// be queued in time are counted and dropped rather than stalling a channel
// callback.
type MessageBus struct {
	inbound  chan InboundMessage
	outbound chan OutboundMessage
	handlers map[string]MessageHandler
	closed   bool
	dropped  droppedCounters
	mu       sync.RWMutex
}

type droppedCounters struct {
	inbound  atomic.Uint64
	outbound atomic.Uint64
}

// NewMessageBus creates a bus. buffer <= 0 picks the default queue depth.
func NewMessageBus(buffer int) *MessageBus {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &MessageBus{
		inbound:  make(chan InboundMessage, buffer),
		outbound: make(chan OutboundMessage, buffer),
		handlers: make(map[string]MessageHandler),
	}
}

func publish[T any](mb *MessageBus, ch chan T, msg T, counter *atomic.Uint64) {
	mb.mu.RLock()
	defer mb.mu.RUnlock()
	if mb.closed {
		return
	}

	select {
	case ch <- msg:
	default:
		timer := time.NewTimer(publishTimeout)
		defer timer.Stop()
		select {
		case ch <- msg:
		case <-timer.C:
			counter.Add(1)
		}
	}
}

func consume[T any](ctx context.Context, ch chan T) (T, bool) {
	var zero T
	select {
	case msg, ok := <-ch:
		if !ok {
			return zero, false
		}
		return msg, true
	case <-ctx.Done():
		return zero, false
	}
}

// PublishInbound queues a user message for the engine loop.
func (mb *MessageBus) PublishInbound(msg InboundMessage) {
	publish(mb, mb.inbound, msg, &mb.dropped.inbound)
}

// ConsumeInbound blocks for the next user message or context cancellation.
func (mb *MessageBus) ConsumeInbound(ctx context.Context) (InboundMessage, bool) {
	return consume(ctx, mb.inbound)
}

// PublishOutbound queues a persona answer for delivery.
func (mb *MessageBus) PublishOutbound(msg OutboundMessage) {
	publish(mb, mb.outbound, msg, &mb.dropped.outbound)
}

// SubscribeOutbound blocks for the next answer or context cancellation.
func (mb *MessageBus) SubscribeOutbound(ctx context.Context) (OutboundMessage, bool) {
	return consume(ctx, mb.outbound)
}

// RegisterHandler binds a per-channel delivery callback.
func (mb *MessageBus) RegisterHandler(channel string, handler MessageHandler) {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	mb.handlers[channel] = handler
}

// GetHandler looks up the delivery callback for a channel.
func (mb *MessageBus) GetHandler(channel string) (MessageHandler, bool) {
	mb.mu.RLock()
	defer mb.mu.RUnlock()
	handler, ok := mb.handlers[channel]
	return handler, ok
}

// Close shuts both queues; publishes after Close are no-ops.
func (mb *MessageBus) Close() {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	if mb.closed {
		return
	}
	mb.closed = true
	close(mb.inbound)
	close(mb.outbound)
}

// DroppedInbound reports how many user messages timed out unpublished.
func (mb *MessageBus) DroppedInbound() uint64 {
	return mb.dropped.inbound.Load()
}

// DroppedOutbound reports how many answers timed out unpublished.
func (mb *MessageBus) DroppedOutbound() uint64 {
	return mb.dropped.outbound.Load()
}

package pubsub

import (
	"context"
	"sync"
	"time"
)

const defaultBufferSize = 64

// Broker is a generic pub/sub event broker. The editing engine publishes
// mode and command line notifications on one; the logger publishes
// entries on another.
type Broker[T any] struct {
	subs       map[chan Event[T]]struct{}
	mu         sync.RWMutex
	done       chan struct{}
	bufferSize int

	// replay keeps the last events for subscribers that arrive late, such
	// as a log pane opened after startup.
	replay    []Event[T]
	replayMax int
}

// Option configures a Broker.
type Option func(*brokerConfig)

type brokerConfig struct {
	bufferSize int
	replay     int
}

// WithBuffer sets the per-subscriber channel size.
func WithBuffer(size int) Option {
	return func(c *brokerConfig) {
		if size > 0 {
			c.bufferSize = size
		}
	}
}

// WithReplay makes the broker remember the last n events and deliver
// them to every new subscriber before live events.
func WithReplay(n int) Option {
	return func(c *brokerConfig) {
		if n > 0 {
			c.replay = n
		}
	}
}

// NewBroker creates a broker with the default buffer size (64) and no replay.
func NewBroker[T any](opts ...Option) *Broker[T] {
	cfg := brokerConfig{bufferSize: defaultBufferSize}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Broker[T]{
		subs:       make(map[chan Event[T]]struct{}),
		done:       make(chan struct{}),
		bufferSize: max(cfg.bufferSize, cfg.replay),
		replayMax:  cfg.replay,
	}
}

// NewBrokerWithBuffer creates a new broker with a custom buffer size.
func NewBrokerWithBuffer[T any](size int) *Broker[T] {
	return NewBroker[T](WithBuffer(size))
}

// Subscribe creates a new subscription channel.
// The channel is automatically closed when ctx is cancelled.
func (b *Broker[T]) Subscribe(ctx context.Context) <-chan Event[T] {
	b.mu.Lock()
	defer b.mu.Unlock()

	select {
	case <-b.done:
		ch := make(chan Event[T])
		close(ch)
		return ch
	default:
	}

	sub := make(chan Event[T], b.bufferSize)
	for _, ev := range b.replay {
		sub <- ev
	}
	b.subs[sub] = struct{}{}

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		defer b.mu.Unlock()

		select {
		case <-b.done:
			return // Already closed
		default:
		}

		delete(b.subs, sub)
		close(sub)
	}()

	return sub
}

// Publish sends an event to all subscribers.
// Non-blocking: drops events if subscriber channel is full.
func (b *Broker[T]) Publish(eventType EventType, payload T) {
	event := Event[T]{
		Type:      eventType,
		Payload:   payload,
		Timestamp: time.Now(),
	}

	if b.replayMax > 0 {
		b.mu.Lock()
		defer b.mu.Unlock()
	} else {
		b.mu.RLock()
		defer b.mu.RUnlock()
	}

	select {
	case <-b.done:
		return
	default:
	}

	if b.replayMax > 0 {
		b.replay = append(b.replay, event)
		if len(b.replay) > b.replayMax {
			b.replay = b.replay[len(b.replay)-b.replayMax:]
		}
	}

	for sub := range b.subs {
		select {
		case sub <- event:
		default:
			// Channel full - drop to prevent blocking
		}
	}
}

// Close shuts down the broker and all subscriber channels.
func (b *Broker[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	select {
	case <-b.done:
		return
	default:
	}

	close(b.done)
	for sub := range b.subs {
		close(sub)
	}
	b.subs = nil
	b.replay = nil
}

// SubscriberCount returns the number of active subscribers.
func (b *Broker[T]) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

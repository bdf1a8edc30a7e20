package pubsub

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// ListenCmd waits for the next event on ch and returns it as the message.
// A cancelled ctx or a closed channel yields a nil message, which Bubble
// Tea ignores, so the listen loop simply stops.
func ListenCmd[T any](ctx context.Context, ch <-chan Event[T]) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-ch:
			if !ok {
				return nil
			}
			return ev
		}
	}
}

// ContinuousListener keeps one subscription open across Update calls.
// After handling an event the model calls Listen again to re-arm it.
type ContinuousListener[T any] struct {
	ctx    context.Context
	ch     <-chan Event[T]
	filter func(Event[T]) bool
}

// ListenerOption configures a ContinuousListener.
type ListenerOption[T any] func(*ContinuousListener[T])

// WithFilter drops events for which keep returns false before they reach
// the model.
func WithFilter[T any](keep func(Event[T]) bool) ListenerOption[T] {
	return func(l *ContinuousListener[T]) {
		l.filter = keep
	}
}

// NewContinuousListener subscribes to sub for the lifetime of ctx.
func NewContinuousListener[T any](ctx context.Context, sub Subscriber[T], opts ...ListenerOption[T]) *ContinuousListener[T] {
	l := &ContinuousListener[T]{ctx: ctx, ch: sub.Subscribe(ctx)}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Listen returns a command delivering the next event that passes the filter.
func (l *ContinuousListener[T]) Listen() tea.Cmd {
	if l.filter == nil {
		return ListenCmd(l.ctx, l.ch)
	}
	return func() tea.Msg {
		for {
			select {
			case <-l.ctx.Done():
				return nil
			case ev, ok := <-l.ch:
				if !ok {
					return nil
				}
				if l.filter(ev) {
					return ev
				}
			}
		}
	}
}

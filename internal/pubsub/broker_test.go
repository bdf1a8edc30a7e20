package pubsub

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type modeSwitch struct {
	from, to string
}

func recv[T any](t *testing.T, ch <-chan Event[T]) Event[T] {
	t.Helper()
	select {
	case ev, ok := <-ch:
		require.True(t, ok, "channel closed")
		return ev
	case <-time.After(time.Second):
		require.FailNow(t, "timeout waiting for event")
	}
	return Event[T]{}
}

func TestBroker_DeliversTypedPayload(t *testing.T) {
	b := NewBroker[modeSwitch]()
	defer b.Close()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := b.Subscribe(ctx)
	b.Publish(ChangedEvent, modeSwitch{from: "NORMAL", to: "INSERT"})

	ev := recv(t, ch)
	require.Equal(t, ChangedEvent, ev.Type)
	require.Equal(t, modeSwitch{from: "NORMAL", to: "INSERT"}, ev.Payload)
	require.WithinDuration(t, time.Now(), ev.Timestamp, time.Second)
}

func TestBroker_FansOutToEverySubscriber(t *testing.T) {
	b := NewBroker[string]()
	defer b.Close()

	subs := make([]<-chan Event[string], 4)
	for i := range subs {
		subs[i] = b.Subscribe(context.Background())
	}
	require.Equal(t, len(subs), b.SubscriberCount())

	b.Publish(StartedEvent, ":")
	for _, ch := range subs {
		require.Equal(t, ":", recv(t, ch).Payload)
	}
}

func TestBroker_CancelledSubscriptionCloses(t *testing.T) {
	b := NewBroker[string]()
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch := b.Subscribe(ctx)
	cancel()

	require.Eventually(t, func() bool { return b.SubscriberCount() == 0 }, time.Second, 5*time.Millisecond)
	_, ok := <-ch
	require.False(t, ok)
}

func TestBroker_FullSubscriberDropsInsteadOfBlocking(t *testing.T) {
	b := NewBrokerWithBuffer[int](1)
	defer b.Close()
	ch := b.Subscribe(context.Background())

	done := make(chan struct{})
	go func() {
		for i := range 10 {
			b.Publish(LoggedEvent, i)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		require.FailNow(t, "Publish blocked on a full subscriber")
	}
	require.Equal(t, 0, recv(t, ch).Payload)
	select {
	case ev := <-ch:
		require.Failf(t, "expected later events to be dropped", "got %v", ev.Payload)
	default:
	}
}

func TestBroker_CloseShutsEverythingDown(t *testing.T) {
	b := NewBroker[string]()
	a := b.Subscribe(context.Background())
	c := b.Subscribe(context.Background())

	b.Close()
	b.Close()

	for _, ch := range []<-chan Event[string]{a, c} {
		_, ok := <-ch
		require.False(t, ok)
	}
	require.Zero(t, b.SubscriberCount())

	late := b.Subscribe(context.Background())
	_, ok := <-late
	require.False(t, ok, "subscribing after Close returns a closed channel")

	require.NotPanics(t, func() { b.Publish(LoggedEvent, "after close") })
}

func TestBroker_Replay(t *testing.T) {
	tests := []struct {
		name      string
		opts      []Option
		published []string
		want      []string
	}{
		{
			name:      "no replay by default",
			published: []string{"Config reloaded"},
		},
		{
			name:      "keeps only the newest entries",
			opts:      []Option{WithReplay(2)},
			published: []string{"Modal starting", "Keymap built", "History opened"},
			want:      []string{"Keymap built", "History opened"},
		},
		{
			name:      "replay larger than buffer",
			opts:      []Option{WithBuffer(1), WithReplay(3)},
			published: []string{"a", "b", "c"},
			want:      []string{"a", "b", "c"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBroker[string](tt.opts...)
			defer b.Close()
			for _, p := range tt.published {
				b.Publish(LoggedEvent, p)
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			ch := b.Subscribe(ctx)

			for _, w := range tt.want {
				require.Equal(t, w, recv(t, ch).Payload)
			}
			b.Publish(ChangedEvent, "live")
			require.Equal(t, "live", recv(t, ch).Payload, "live events follow the replay")
		})
	}
}

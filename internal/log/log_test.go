package log

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLog_WritesFormattedEntry(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf)
	t.Cleanup(Reset)

	Info(CatEngine, "Key handled", "key", "w", "mode", "NORMAL")
	require.Regexp(t, `^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2} \[INFO\] \[engine\] Key handled key=w mode=NORMAL\n$`, buf.String())
}

func TestLog_OrphanField(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf)
	t.Cleanup(Reset)

	Debug(CatKeymap, "Remap", "keys")
	require.Contains(t, buf.String(), "Remap keys=<missing>")
}

func TestLog_ErrorErr(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf)
	t.Cleanup(Reset)

	ErrorErr(CatDB, "save failed", errors.New("disk full"), "id", 3)
	require.Contains(t, buf.String(), "[ERROR] [db] save failed id=3 error=disk full")
}

func TestLog_MinLevelAndDisable(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf)
	t.Cleanup(Reset)

	SetMinLevel(LevelWarn)
	Info(CatUI, "hidden")
	Warn(CatUI, "shown")
	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), "shown")

	buf.Reset()
	SetEnabled(false)
	Error(CatUI, "muted")
	require.Empty(t, buf.String())
}

func TestLog_NoLoggerIsNoop(t *testing.T) {
	Reset()
	require.NotPanics(t, func() { Debug(CatEngine, "nothing") })
	require.Nil(t, NewListener(context.Background(), LevelDebug))
}

func TestLog_ListenerReceivesEntries(t *testing.T) {
	InitWriter(nil)
	t.Cleanup(Reset)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	listener := NewListener(ctx, LevelWarn)
	require.NotNil(t, listener)

	done := make(chan LogEvent, 1)
	go func() {
		if ev, ok := listener.Listen()().(LogEvent); ok {
			done <- ev
		}
	}()

	// NewListener subscribed already, so the entry is buffered even if the
	// goroutine has not started reading.
	Info(CatMode, "Below the pane level")
	Warn(CatMode, "Mode changed", "to", "INSERT")

	select {
	case ev := <-done:
		require.Equal(t, LevelWarn, ev.Payload.Level, "info entry filtered out")
		require.Equal(t, CatMode, ev.Payload.Category)
		require.Equal(t, "to=INSERT", ev.Payload.Fields)
	case <-time.After(time.Second):
		require.Fail(t, "timeout waiting for log event")
	}
}

func TestParseLevel(t *testing.T) {
	require.Equal(t, LevelInfo, ParseLevel("INFO"))
	require.Equal(t, LevelWarn, ParseLevel("warning"))
	require.Equal(t, LevelError, ParseLevel("error"))
	require.Equal(t, LevelDebug, ParseLevel("verbose"))
}

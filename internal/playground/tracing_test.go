package playground

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/zjrosen/modal/internal/history"
)

func newRecorder(t *testing.T) (*tracetest.SpanRecorder, *sdktrace.TracerProvider) {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return rec, tp
}

func spansByName(rec *tracetest.SpanRecorder) map[string]sdktrace.ReadOnlySpan {
	spans := make(map[string]sdktrace.ReadOnlySpan)
	for _, span := range rec.Ended() {
		spans[span.Name()] = span
	}
	return spans
}

func TestPlayground_WriteSpanParentsHistorySave(t *testing.T) {
	rec, tp := newRecorder(t)
	store, err := history.Open(filepath.Join(t.TempDir(), "history.db"),
		history.WithTracer(tp.Tracer("history")))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	m := newModel(t, Options{Content: "one\ntwo", Store: store, Name: "notes.txt", Tracer: tp.Tracer("playground")})
	m = typeKeys(t, m, "x")
	_, _ = command(t, m, "w")

	spans := spansByName(rec)
	write, ok := spans["command.write"]
	require.True(t, ok)
	require.Equal(t, codes.Ok, write.Status().Code)
	require.Contains(t, write.Attributes(), attribute.String("command.action", "write"))
	require.Contains(t, write.Attributes(), attribute.String("buffer.name", "notes.txt"))
	require.Contains(t, write.Attributes(), attribute.Int("buffer.lines", 2))
	require.Contains(t, write.Attributes(), attribute.Bool("buffer.dirty", true))

	save, ok := spans["history.save"]
	require.True(t, ok)
	require.Equal(t, write.SpanContext().TraceID(), save.SpanContext().TraceID())
	require.Equal(t, write.SpanContext().SpanID(), save.Parent().SpanID())
}

func TestPlayground_CommandSpanFailures(t *testing.T) {
	tests := []struct {
		name string
		cmd  string
		span string
	}{
		{"write without target", "w", "command.write"},
		{"quit with unsaved edits", "q", "command.quit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, tp := newRecorder(t)
			m := newModel(t, Options{Content: "abc", Tracer: tp.Tracer("playground")})
			m = typeKeys(t, m, "x")
			_, _ = command(t, m, tt.cmd)

			span, ok := spansByName(rec)[tt.span]
			require.True(t, ok)
			require.Equal(t, codes.Error, span.Status().Code)
		})
	}
}

func TestPlayground_ForceQuitSpan(t *testing.T) {
	rec, tp := newRecorder(t)
	m := newModel(t, Options{Content: "abc", Tracer: tp.Tracer("playground")})
	m = typeKeys(t, m, "x")
	m, cmd := command(t, m, "q!")
	require.NotNil(t, cmd)
	require.True(t, m.Quitting())

	span, ok := spansByName(rec)["command.quit!"]
	require.True(t, ok)
	require.Equal(t, codes.Ok, span.Status().Code)
	require.Contains(t, span.Attributes(), attribute.Bool("buffer.dirty", true))
}

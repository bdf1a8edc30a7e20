package history

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func openTracedStore(t *testing.T) (*Store, *tracetest.SpanRecorder) {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return openTestStore(t, WithTracer(tp.Tracer("test"))), rec
}

func endedSpan(t *testing.T, rec *tracetest.SpanRecorder, name string) sdktrace.ReadOnlySpan {
	t.Helper()
	var found sdktrace.ReadOnlySpan
	for _, span := range rec.Ended() {
		if span.Name() == name {
			found = span
		}
	}
	require.NotNil(t, found, "no %s span", name)
	return found
}

func spanAttrs(span sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	attrs := make(map[attribute.Key]attribute.Value)
	for _, kv := range span.Attributes() {
		attrs[kv.Key] = kv.Value
	}
	return attrs
}

func TestStore_SaveSpan(t *testing.T) {
	ctx := context.Background()
	s, rec := openTracedStore(t)

	_, err := s.Save(ctx, "notes.txt", "one")
	require.NoError(t, err)
	snap, err := s.Save(ctx, "notes.txt", "one\ntwo")
	require.NoError(t, err)

	save := endedSpan(t, rec, "history.save")
	require.Equal(t, codes.Ok, save.Status().Code)
	attrs := spanAttrs(save)
	require.Equal(t, "notes.txt", attrs["snapshot.name"].AsString())
	require.Equal(t, snap.ID, attrs["snapshot.id"].AsString())
	require.Equal(t, int64(2), attrs["buffer.lines"].AsInt64())
	require.Equal(t, "+1 -0", attrs["snapshot.stats"].AsString())

	latest := endedSpan(t, rec, "history.latest")
	require.Equal(t, save.SpanContext().SpanID(), latest.Parent().SpanID(), "latest runs inside save")
}

func TestStore_LookupSpans(t *testing.T) {
	ctx := context.Background()
	s, rec := openTracedStore(t)

	_, err := s.Get(ctx, "nope")
	require.ErrorIs(t, err, ErrNotFound)
	miss := endedSpan(t, rec, "history.get")
	require.NotEqual(t, codes.Error, miss.Status().Code, "a miss is not a failure")
	require.Equal(t, int64(0), spanAttrs(miss)["query.rows"].AsInt64())

	_, err = s.Save(ctx, "a.txt", "x")
	require.NoError(t, err)
	_, err = s.Save(ctx, "b.txt", "y")
	require.NoError(t, err)

	snaps, err := s.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	list := spanAttrs(endedSpan(t, rec, "history.list"))
	require.Equal(t, int64(1), list["query.limit"].AsInt64())
	require.Equal(t, int64(1), list["query.rows"].AsInt64())
}

func TestStore_SaveSpanRecordsFailure(t *testing.T) {
	s, rec := openTracedStore(t)
	require.NoError(t, s.Close())

	_, err := s.Save(context.Background(), "notes.txt", "text")
	require.Error(t, err)

	save := endedSpan(t, rec, "history.save")
	require.Equal(t, codes.Error, save.Status().Code)
}

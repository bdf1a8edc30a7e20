package tracing

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.False(t, cfg.Enabled)
	require.Equal(t, "file", cfg.Exporter)
	require.Equal(t, "traces.jsonl", cfg.FilePath)
	require.Equal(t, "localhost:4317", cfg.OTLPEndpoint)
	require.InDelta(t, 1.0, cfg.SampleRate, 0)
	require.NoError(t, cfg.Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"negative sample rate", func(c *Config) { c.SampleRate = -0.1 }, "tracing.sample_rate"},
		{"sample rate above one", func(c *Config) { c.SampleRate = 2 }, "tracing.sample_rate"},
		{"unknown exporter", func(c *Config) { c.Exporter = "zipkin" }, "tracing.exporter"},
		{"otlp without endpoint", func(c *Config) {
			c.Enabled = true
			c.Exporter = "otlp"
			c.OTLPEndpoint = ""
		}, "tracing.otlp_endpoint"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			require.ErrorContains(t, cfg.Validate(), tt.wantErr)
		})
	}
}

func TestNewProvider_DisabledIsNoop(t *testing.T) {
	p, err := NewProvider(DefaultConfig())
	require.NoError(t, err)
	require.False(t, p.Enabled())

	_, span := p.Tracer().Start(context.Background(), "ignored")
	require.False(t, span.IsRecording())
	span.End()
	require.NoError(t, p.Shutdown(context.Background()))
}

func TestNewProvider_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Enabled = true
	cfg.Exporter = "zipkin"
	_, err := NewProvider(cfg)
	require.Error(t, err)
}

func TestNewProvider_FileExporterWritesOnShutdown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "traces.jsonl")
	cfg := DefaultConfig()
	cfg.Enabled = true
	cfg.FilePath = path

	p, err := NewProvider(cfg)
	require.NoError(t, err)
	require.True(t, p.Enabled())

	_, span := p.Tracer().Start(context.Background(), SpanPrefixCommand+"write")
	End(span, nil)
	require.NoError(t, p.Shutdown(context.Background()))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	var names []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var rec struct{ Name string }
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &rec))
		names = append(names, rec.Name)
	}
	require.NoError(t, scanner.Err())
	require.Equal(t, []string{"command.write"}, names)
}

func TestNewProvider_NoneExporter(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Enabled = true
	cfg.Exporter = "none"

	p, err := NewProvider(cfg)
	require.NoError(t, err)
	require.True(t, p.Enabled())

	_, span := p.Tracer().Start(context.Background(), "kept in memory")
	require.True(t, span.IsRecording())
	span.End()
	require.NoError(t, p.Shutdown(context.Background()))
}

func TestEnd_SetsStatus(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tracer := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec)).Tracer("test")

	_, ok := tracer.Start(context.Background(), "ok")
	End(ok, nil)
	_, failed := tracer.Start(context.Background(), "failed")
	End(failed, errors.New("disk full"))

	spans := rec.Ended()
	require.Len(t, spans, 2)
	require.Equal(t, codes.Ok, spans[0].Status().Code)
	require.Equal(t, codes.Error, spans[1].Status().Code)
	require.Equal(t, "disk full", spans[1].Status().Description)
	require.Len(t, spans[1].Events(), 1)
	require.Equal(t, "exception", spans[1].Events()[0].Name)
}

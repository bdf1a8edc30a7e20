// Package tracing configures OpenTelemetry for modal. Ex commands run by
// the playground and every history store call get a span; with tracing
// off the tracer is a no-op.
package tracing

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// ServiceName identifies modal in exported spans.
const ServiceName = "modal"

// Config configures tracing.
type Config struct {
	Enabled bool `mapstructure:"enabled"`
	// Exporter is "file" (default), "otlp" or "none". The playground owns
	// the terminal, so spans are never written to stdout.
	Exporter     string  `mapstructure:"exporter"`
	FilePath     string  `mapstructure:"file_path"`
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	SampleRate   float64 `mapstructure:"sample_rate"`
}

// DefaultConfig returns tracing off, exporting to traces.jsonl when on.
func DefaultConfig() Config {
	return Config{
		Enabled:      false,
		Exporter:     "file",
		FilePath:     "traces.jsonl",
		OTLPEndpoint: "localhost:4317",
		SampleRate:   1.0,
	}
}

// Validate checks the exporter settings.
func (c Config) Validate() error {
	var errs []error
	if c.SampleRate < 0 || c.SampleRate > 1 {
		errs = append(errs, fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", c.SampleRate))
	}
	switch c.Exporter {
	case "", "file", "otlp", "none":
	default:
		errs = append(errs, fmt.Errorf("tracing.exporter must be \"file\", \"otlp\" or \"none\", got %q", c.Exporter))
	}
	if c.Enabled && c.Exporter == "otlp" && c.OTLPEndpoint == "" {
		errs = append(errs, errors.New("tracing.otlp_endpoint is required when exporter is \"otlp\""))
	}
	return errors.Join(errs...)
}

// Provider owns the tracer provider and whatever the exporter opened.
type Provider struct {
	provider *sdktrace.TracerProvider
	tracer   trace.Tracer
	file     *os.File
}

// Noop returns a tracer that records nothing.
func Noop() trace.Tracer {
	return noop.NewTracerProvider().Tracer(ServiceName)
}

// NewProvider builds the provider described by cfg and installs it as the
// global provider. A disabled config yields a no-op tracer.
func NewProvider(cfg Config) (*Provider, error) {
	if !cfg.Enabled {
		return &Provider{tracer: Noop()}, nil
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := &Provider{}
	var exporter sdktrace.SpanExporter
	switch cfg.Exporter {
	case "file", "":
		path := cfg.FilePath
		if path == "" {
			path = DefaultConfig().FilePath
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, fmt.Errorf("create trace directory: %w", err)
		}
		f, err := os.OpenFile(filepath.Clean(path), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600) //nolint:gosec // G304: trace path comes from config
		if err != nil {
			return nil, fmt.Errorf("open trace file: %w", err)
		}
		p.file = f
		exporter, err = stdouttrace.New(stdouttrace.WithWriter(f))
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("create file exporter: %w", err)
		}
	case "otlp":
		var err error
		exporter, err = otlptracegrpc.New(context.Background(),
			otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint),
			otlptracegrpc.WithInsecure(),
		)
		if err != nil {
			return nil, fmt.Errorf("create otlp exporter: %w", err)
		}
	case "none":
	}

	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(resource.NewSchemaless(attribute.String("service.name", ServiceName))),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRate))),
	}
	if exporter != nil {
		opts = append(opts, sdktrace.WithBatcher(exporter))
	}
	p.provider = sdktrace.NewTracerProvider(opts...)
	p.tracer = p.provider.Tracer(ServiceName)
	otel.SetTracerProvider(p.provider)
	return p, nil
}

// Tracer returns the tracer; it is never nil.
func (p *Provider) Tracer() trace.Tracer {
	return p.tracer
}

// Enabled reports whether spans are recorded.
func (p *Provider) Enabled() bool {
	return p.provider != nil
}

// Shutdown flushes pending spans and closes the trace file.
func (p *Provider) Shutdown(ctx context.Context) error {
	var errs []error
	if p.provider != nil {
		errs = append(errs, p.provider.Shutdown(ctx))
	}
	if p.file != nil {
		errs = append(errs, p.file.Close())
	}
	return errors.Join(errs...)
}

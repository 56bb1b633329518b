package observability

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "styledetect"

// Tracer is the package-wide tracer. It delegates to the global provider, so
// spans are no-ops until InitTracing installs an exporter.
var Tracer trace.Tracer = otel.Tracer(instrumentationName)

type TracingConfig struct {
	Enabled      bool
	OTLPEndpoint string
	ServiceName  string
}

// InitTracing installs an OTLP gRPC exporter as the global tracer provider.
// The returned shutdown func flushes pending spans; it is a no-op when tracing
// is disabled.
func InitTracing(ctx context.Context, cfg TracingConfig) (func(context.Context) error, error) {
	noop := func(context.Context) error { return nil }
	if !cfg.Enabled {
		return noop, nil
	}

	opts := []otlptracegrpc.Option{otlptracegrpc.WithInsecure()}
	if endpoint := strings.TrimSpace(cfg.OTLPEndpoint); endpoint != "" {
		opts = append(opts, otlptracegrpc.WithEndpoint(endpoint))
	}
	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return noop, fmt.Errorf("create otlp exporter: %w", err)
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = instrumentationName
	}
	res := resource.NewSchemaless(attribute.String("service.name", serviceName))

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(provider)
	Tracer = provider.Tracer(instrumentationName)

	return provider.Shutdown, nil
}

// Package telemetry exports the spans recorded around contact deliveries.
//
// The EmailJS and SMTP transports always open spans through the global
// tracer. Until Setup installs a provider those spans go to otel's no-op
// default, so running without a collector costs nothing.
package telemetry

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/Zachkp/devfolio/internal/config"
)

// Shutdown flushes buffered spans.
type Shutdown func(context.Context) error

func noop(context.Context) error { return nil }

// collectorURL returns the OTLP/HTTP collector to export to. Export needs
// both OTEL_ENABLED and OTEL_ENDPOINT; OTEL_ENABLED=false silences a
// configured endpoint without removing it.
func collectorURL(cfg config.OTel) (string, bool) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	return endpoint, cfg.Enabled && endpoint != ""
}

// Setup installs a batching provider that tags every delivery span with
// serviceName and sends it to the configured collector. Without a collector
// it installs nothing and returns a no-op Shutdown.
func Setup(ctx context.Context, serviceName string, cfg config.OTel) (Shutdown, error) {
	endpoint, ok := collectorURL(cfg)
	if !ok {
		return noop, nil
	}

	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(endpoint))
	if err != nil {
		return noop, fmt.Errorf("otlp exporter for %s: %w", endpoint, err)
	}
	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName(serviceName)))
	if err != nil {
		return noop, fmt.Errorf("trace resource: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	return provider.Shutdown, nil
}

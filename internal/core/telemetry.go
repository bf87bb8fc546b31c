// AngelaMos | 2026
// telemetry.go

package core

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/carterperez-dev/medassist/internal/config"
)

const (
	instrumentationName = "github.com/carterperez-dev/medassist"

	defaultSampleRate = 0.1
	exportTimeout     = 5 * time.Second
	flushTimeout      = 10 * time.Second
)

// Telemetry owns the process-wide tracer provider. Spans are opened through
// StartSpan, which always goes via the global provider.
type Telemetry struct {
	provider *sdktrace.TracerProvider
}

// NewTelemetry installs an OTLP/gRPC tracer provider as the global one.
// With no endpoint configured the global no-op provider stays in place.
func NewTelemetry(
	ctx context.Context,
	otelCfg config.OtelConfig,
	appCfg config.AppConfig,
) (*Telemetry, error) {
	if !otelCfg.Enabled || otelCfg.Endpoint == "" {
		return &Telemetry{}, nil
	}

	exporter, err := otlptracegrpc.New(ctx, exporterOptions(otelCfg)...)
	if err != nil {
		return nil, fmt.Errorf("create otlp exporter: %w", err)
	}

	res, err := serviceResource(ctx, otelCfg.ServiceName, appCfg)
	if err != nil {
		return nil, err
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter,
			sdktrace.WithBatchTimeout(exportTimeout),
		),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler(otelCfg.SampleRate)),
	)

	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return &Telemetry{provider: provider}, nil
}

func exporterOptions(cfg config.OtelConfig) []otlptracegrpc.Option {
	creds := credentials.NewClientTLSFromCert(nil, "")
	if cfg.Insecure {
		creds = insecure.NewCredentials()
	}

	return []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(cfg.Endpoint),
		otlptracegrpc.WithTimeout(exportTimeout),
		otlptracegrpc.WithTLSCredentials(creds),
	}
}

func serviceResource(
	ctx context.Context,
	serviceName string,
	app config.AppConfig,
) (*resource.Resource, error) {
	if serviceName == "" {
		serviceName = app.Name
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(app.Version),
			semconv.DeploymentEnvironment(app.Environment),
		),
		resource.WithHost(),
	)
	if err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}
	return res, nil
}

// sampler keeps the caller's decision for propagated traces and samples
// new root traces at rate. Out-of-range rates fall back to the default.
func sampler(rate float64) sdktrace.Sampler {
	if rate <= 0 || rate > 1 {
		rate = defaultSampleRate
	}
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(rate))
}

// Shutdown flushes buffered spans. It is a no-op when tracing is disabled.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t == nil || t.provider == nil {
		return nil
	}

	flushCtx, cancel := context.WithTimeout(ctx, flushTimeout)
	defer cancel()

	if err := t.provider.Shutdown(flushCtx); err != nil {
		return fmt.Errorf("shutdown tracer provider: %w", err)
	}
	return nil
}

func StartSpan(
	ctx context.Context,
	name string,
	attrs ...attribute.KeyValue,
) (context.Context, trace.Span) {
	return otel.Tracer(instrumentationName).Start(
		ctx,
		name,
		trace.WithAttributes(attrs...),
	)
}

// EndSpan records err (if any) on the span and ends it.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	trace.SpanFromContext(ctx).AddEvent(name, trace.WithAttributes(attrs...))
}

// TraceIDFromContext returns the active trace id, or "" outside a
// recording span.
func TraceIDFromContext(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}

package tracing

import (
	"context"
	"os"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	serviceName    = "metals-pulse"
	serviceVersion = "1.0.0"

	defaultEndpoint = "localhost:4317"
)

// Component names tag which binary emitted a span.
const (
	ComponentAPI = "api"
	ComponentMCP = "mcp"
)

var newTraceExporter = func(ctx context.Context, endpoint string) (sdktrace.SpanExporter, error) {
	return otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithInsecure(),
	)
}

type settings struct {
	enabled     bool
	endpoint    string
	sampleRatio float64
}

// settingsFromEnv reads TRACING_ENABLED, OTEL_EXPORTER_OTLP_ENDPOINT and
// TRACING_SAMPLE_RATIO. A ratio outside (0, 1] samples everything.
func settingsFromEnv() settings {
	s := settings{
		enabled:     os.Getenv("TRACING_ENABLED") != "false",
		endpoint:    os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		sampleRatio: 1,
	}
	if s.endpoint == "" {
		s.endpoint = defaultEndpoint
	}
	if raw := os.Getenv("TRACING_SAMPLE_RATIO"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil && v > 0 && v <= 1 {
			s.sampleRatio = v
		}
	}
	return s
}

// InitTracer installs the global tracer provider for one binary. With
// TRACING_ENABLED=false spans stay in-process and nothing is exported.
func InitTracer(ctx context.Context, component string) (*sdktrace.TracerProvider, trace.Tracer, error) {
	s := settingsFromEnv()

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
			attribute.String("metals.component", component),
		),
	)
	if err != nil {
		return nil, nil, err
	}

	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(s.sampleRatio))),
	}
	if s.enabled {
		exporter, err := newTraceExporter(ctx, s.endpoint)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, sdktrace.WithBatcher(exporter))
	}

	tp := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return tp, tp.Tracer(serviceName), nil
}

// Package telemetry wires the OpenTelemetry SDK to an OTLP gRPC exporter.
package telemetry

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/MikeRez0/storefront/internal/adapter/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// ShutdownFunc flushes buffered spans and closes the exporter.
type ShutdownFunc func(ctx context.Context) error

// SetupTracer registers the global tracer provider and W3C propagators.
// Without an endpoint only the propagators are installed and spans stay
// in-process.
func SetupTracer(ctx context.Context, conf *config.Telemetry, mode string) (ShutdownFunc, error) {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	if conf.Endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}

	endpoint := stripScheme(conf.Endpoint)
	conn, err := grpc.NewClient(endpoint, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("telemetry: failed to dial collector at %s: %w", endpoint, err)
	}

	exporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("telemetry: failed to create trace exporter: %w", err)
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			"",
			semconv.ServiceName(serviceName(conf)),
			semconv.DeploymentEnvironment(strings.ToLower(mode)),
		),
	)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("telemetry: failed to build resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(5*time.Second)),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.AlwaysSample())),
	)
	otel.SetTracerProvider(tp)

	return func(ctx context.Context) error {
		if err := tp.Shutdown(ctx); err != nil {
			return fmt.Errorf("telemetry: error shutting down tracer provider: %w", err)
		}
		return conn.Close()
	}, nil
}

func serviceName(conf *config.Telemetry) string {
	if conf.ServiceName == "" {
		return "storefront"
	}
	return conf.ServiceName
}

func stripScheme(endpoint string) string {
	for _, prefix := range []string{"http://", "https://"} {
		if s, ok := strings.CutPrefix(endpoint, prefix); ok {
			return s
		}
	}
	return endpoint
}

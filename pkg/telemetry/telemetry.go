// Package telemetry wires OpenTelemetry tracing into the CLI.
//
// Everything is driven by the standard OTEL_* environment variables and stays
// off unless OTEL_ENABLED=true. Init installs the global TracerProvider;
// callers then create spans through otel.Tracer().
//
// Recognized variables: OTEL_ENABLED, OTEL_SERVICE_NAME,
// OTEL_SERVICE_VERSION, OTEL_EXPORTER_OTLP_ENDPOINT,
// OTEL_EXPORTER_OTLP_PROTOCOL (grpc or http/protobuf),
// OTEL_EXPORTER_OTLP_HEADERS, OTEL_EXPORTER_OTLP_INSECURE,
// OTEL_TRACES_SAMPLER, OTEL_TRACES_SAMPLER_ARG, OTEL_RESOURCE_ATTRIBUTES.
package telemetry

import (
	"context"
	"os"
	"strings"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
)

// Config mirrors the OTEL_* environment variables.
type Config struct {
	Enabled    bool
	Service    string
	Version    string
	Endpoint   string
	Protocol   string
	Insecure   bool
	Headers    map[string]string
	Sampler    string
	SamplerArg string
	Attrs      map[string]string
}

// loadEnv reads the environment; loadConfig caches the result for the
// lifetime of the process.
func loadEnv() Config {
	return Config{
		Enabled:    envBool("OTEL_ENABLED"),
		Service:    envOr("OTEL_SERVICE_NAME", "pagerank-analysis"),
		Version:    envOr("OTEL_SERVICE_VERSION", "unknown"),
		Endpoint:   os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		Protocol:   envOr("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc"),
		Insecure:   envBool("OTEL_EXPORTER_OTLP_INSECURE"),
		Headers:    envPairs("OTEL_EXPORTER_OTLP_HEADERS"),
		Sampler:    os.Getenv("OTEL_TRACES_SAMPLER"),
		SamplerArg: os.Getenv("OTEL_TRACES_SAMPLER_ARG"),
		Attrs:      envPairs("OTEL_RESOURCE_ATTRIBUTES"),
	}
}

var loadConfig = sync.OnceValue(loadEnv)

func envBool(key string) bool {
	return strings.EqualFold(os.Getenv(key), "true")
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// envPairs parses a "key=value,key=value" variable. Values may contain '=';
// entries without a key are dropped.
func envPairs(key string) map[string]string {
	pairs := make(map[string]string)
	for _, item := range strings.Split(os.Getenv(key), ",") {
		name, value, ok := strings.Cut(item, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			continue
		}
		pairs[name] = strings.TrimSpace(value)
	}
	return pairs
}

// Enabled reports whether tracing is configured on.
func Enabled() bool {
	return loadConfig().Enabled
}

func nopShutdown(context.Context) error { return nil }

// Init installs the global TracerProvider and returns its shutdown hook.
// With tracing disabled both are no-ops.
func Init(ctx context.Context) (func(context.Context) error, error) {
	cfg := loadConfig()
	if !cfg.Enabled {
		return nopShutdown, nil
	}

	exporter, err := newExporter(ctx, cfg)
	if err != nil {
		return nopShutdown, err
	}

	attrs := []attribute.KeyValue{
		semconv.ServiceName(cfg.Service),
		semconv.ServiceVersion(cfg.Version),
	}
	if host, herr := os.Hostname(); herr == nil && host != "" {
		attrs = append(attrs, semconv.HostName(host))
	}
	for name, value := range cfg.Attrs {
		attrs = append(attrs, attribute.String(name, value))
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(semconv.SchemaURL, attrs...),
	)
	if err != nil {
		return nopShutdown, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(newSampler(cfg)),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return tp.Shutdown, nil
}

package telemetry

import (
	"context"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"google.golang.org/grpc/credentials/insecure"
)

// endpointTarget strips an http(s) scheme off the configured endpoint and
// reports whether plain text was requested, by the scheme or by
// OTEL_EXPORTER_OTLP_INSECURE.
func endpointTarget(cfg Config) (target string, plaintext bool) {
	target = cfg.Endpoint
	if scheme, rest, ok := strings.Cut(target, "://"); ok {
		target = rest
		plaintext = scheme == "http"
	}
	return target, plaintext || cfg.Insecure
}

// newExporter builds the OTLP trace exporter for the configured protocol.
// gRPC is the default; http and http/protobuf select the HTTP transport.
func newExporter(ctx context.Context, cfg Config) (*otlptrace.Exporter, error) {
	target, plaintext := endpointTarget(cfg)

	if proto := strings.ToLower(cfg.Protocol); proto == "http" || proto == "http/protobuf" {
		var opts []otlptracehttp.Option
		if target != "" {
			opts = append(opts, otlptracehttp.WithEndpoint(target))
		}
		if len(cfg.Headers) > 0 {
			opts = append(opts, otlptracehttp.WithHeaders(cfg.Headers))
		}
		if plaintext {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		return otlptracehttp.New(ctx, opts...)
	}

	var opts []otlptracegrpc.Option
	if target != "" {
		opts = append(opts, otlptracegrpc.WithEndpoint(target))
	}
	if len(cfg.Headers) > 0 {
		opts = append(opts, otlptracegrpc.WithHeaders(cfg.Headers))
	}
	if plaintext {
		opts = append(opts, otlptracegrpc.WithTLSCredentials(insecure.NewCredentials()))
	}
	return otlptracegrpc.New(ctx, opts...)
}

// newSampler maps OTEL_TRACES_SAMPLER onto an SDK sampler. A
// "parentbased_" prefix wraps the base sampler; unknown or empty names
// sample everything.
func newSampler(cfg Config) sdktrace.Sampler {
	name := strings.TrimSpace(cfg.Sampler)
	parent := strings.HasPrefix(name, "parentbased_")

	var sampler sdktrace.Sampler
	switch strings.TrimPrefix(name, "parentbased_") {
	case "always_off":
		sampler = sdktrace.NeverSample()
	case "traceidratio":
		sampler = sdktrace.TraceIDRatioBased(samplerRatio(cfg.SamplerArg))
	default: // always_on, empty or unrecognized
		sampler = sdktrace.AlwaysSample()
	}

	if parent {
		sampler = sdktrace.ParentBased(sampler)
	}
	return sampler
}

// samplerRatio parses the sampler argument, clamped to [0, 1].
// Anything unparsable means full sampling.
func samplerRatio(arg string) float64 {
	ratio, err := strconv.ParseFloat(strings.TrimSpace(arg), 64)
	if err != nil {
		return 1
	}
	return min(max(ratio, 0), 1)
}

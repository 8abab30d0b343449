package otel

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"

	sdkresource "go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
)

func setupTracer(ctx context.Context, resource *sdkresource.Resource) (ShutdownFunc, error) {
	var err error
	var exporter sdktrace.SpanExporter

	if protocol("traces") == "grpc" {
		exporter, err = otlptracegrpc.New(ctx)
	} else {
		exporter, err = otlptracehttp.New(ctx)
	}

	if err != nil {
		return nil, err
	}

	provider := sdktrace.NewTracerProvider(append(tracerOptions(EnableDebug),
		sdktrace.WithResource(resource),
		sdktrace.WithBatcher(exporter, batchOptions(EnableDebug)...),
	)...)

	otel.SetTracerProvider(provider)

	return provider.Shutdown, nil
}

// tracerOptions samples every request while debugging. Otherwise the SDK
// default applies, which honors OTEL_TRACES_SAMPLER.
func tracerOptions(debug bool) []sdktrace.TracerProviderOption {
	if !debug {
		return nil
	}

	return []sdktrace.TracerProviderOption{
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	}
}

func batchOptions(debug bool) []sdktrace.BatchSpanProcessorOption {
	if !debug {
		return nil
	}

	return []sdktrace.BatchSpanProcessorOption{
		sdktrace.WithBatchTimeout(time.Second),
	}
}

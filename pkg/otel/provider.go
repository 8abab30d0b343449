package otel

import (
	"context"
	"errors"
	"os"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	sdkresource "go.opentelemetry.io/otel/sdk/resource"
)

const instrumentationName = "github.com/adrianliechti/t101"

var (
	EnableDebug     = false
	EnableTelemetry = false
)

func init() {
	EnableDebug = os.Getenv("DEBUG") != ""
	EnableTelemetry = os.Getenv("TELEMETRY") != ""
}

type Observable interface {
	otelSetup()
}

// ShutdownFunc flushes and stops the exporters installed by Setup.
type ShutdownFunc func(ctx context.Context) error

// Setup installs OTLP exporters for traces, metrics and logs. It is a no-op
// unless TELEMETRY is set. The slog default logger is replaced by the otelslog bridge.
func Setup(ctx context.Context, serviceName, serviceVersion string) (ShutdownFunc, error) {
	if !EnableTelemetry {
		return func(context.Context) error { return nil }, nil
	}

	resource, err := sdkresource.New(ctx,
		sdkresource.WithFromEnv(),
		sdkresource.WithTelemetrySDK(),
		sdkresource.WithAttributes(
			attribute.String("service.name", serviceName),
			attribute.String("service.version", serviceVersion),
		),
	)

	if err != nil {
		return nil, err
	}

	var shutdowns []ShutdownFunc

	for _, setup := range []func(context.Context, *sdkresource.Resource) (ShutdownFunc, error){
		setupTracer,
		setupMeter,
		setupLogger,
	} {
		shutdown, err := setup(ctx, resource)

		if err != nil {
			return nil, errors.Join(err, shutdownAll(shutdowns)(ctx))
		}

		shutdowns = append(shutdowns, shutdown)
	}

	return shutdownAll(shutdowns), nil
}

func shutdownAll(shutdowns []ShutdownFunc) ShutdownFunc {
	return func(ctx context.Context) error {
		var errs []error

		// setup order, so the logger flushes last
		for _, shutdown := range shutdowns {
			errs = append(errs, shutdown(ctx))
		}

		return errors.Join(errs...)
	}
}

// protocol returns the OTLP transport for a signal ("traces", "metrics", "logs").
// The signal specific variable wins over OTEL_EXPORTER_OTLP_PROTOCOL.
func protocol(signal string) string {
	keys := []string{
		"OTEL_EXPORTER_OTLP_" + strings.ToUpper(signal) + "_PROTOCOL",
		"OTEL_EXPORTER_OTLP_PROTOCOL",
	}

	for _, key := range keys {
		if value := strings.ToLower(strings.TrimSpace(os.Getenv(key))); value != "" {
			return value
		}
	}

	return "http/protobuf"
}

package main

import (
	"context"
	"fmt"
	"io"

	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/alnah/go-html2img"
)

// metricsSetup owns the meter provider behind --metrics.
type metricsSetup struct {
	provider *sdkmetric.MeterProvider
	metrics  *html2img.Metrics
}

// newMetricsSetup creates export instruments whose readings are printed to w
// when the setup shuts down. Disabled setups record nothing.
func newMetricsSetup(enabled bool, w io.Writer) (*metricsSetup, error) {
	if !enabled {
		return &metricsSetup{}, nil
	}

	exp, err := stdoutmetric.New(
		stdoutmetric.WithWriter(w),
		stdoutmetric.WithPrettyPrint(),
	)
	if err != nil {
		return nil, fmt.Errorf("creating metrics exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp)),
	)

	m, err := html2img.NewMetrics(provider)
	if err != nil {
		_ = provider.Shutdown(context.Background())
		return nil, fmt.Errorf("creating metrics: %w", err)
	}

	return &metricsSetup{provider: provider, metrics: m}, nil
}

// Metrics returns the instruments, or nil when disabled.
func (ms *metricsSetup) Metrics() *html2img.Metrics {
	return ms.metrics
}

// Shutdown flushes pending readings and stops the provider.
func (ms *metricsSetup) Shutdown(ctx context.Context) error {
	if ms.provider == nil {
		return nil
	}
	return ms.provider.Shutdown(ctx)
}

package html2img

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Export outcome attribute values.
const (
	OutcomeSuccess  = "success"
	OutcomeFailed   = "failed"
	OutcomeTimeout  = "timeout"
	OutcomeRejected = "rejected"
)

// meterName scopes instruments created by this package.
const meterName = "github.com/alnah/go-html2img"

// Metrics records export counts and durations using OpenTelemetry.
type Metrics struct {
	exports  metric.Int64Counter
	duration metric.Float64Histogram
}

// NewMetrics creates the export instruments on the given provider.
func NewMetrics(provider metric.MeterProvider) (*Metrics, error) {
	meter := provider.Meter(meterName)

	exports, err := meter.Int64Counter(
		"html2img.exports",
		metric.WithDescription("Export attempts by format and outcome"),
		metric.WithUnit("{export}"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram(
		"html2img.export.duration",
		metric.WithDescription("Export wall time"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{exports: exports, duration: duration}, nil
}

// noopMetrics returns instruments that record nothing.
func noopMetrics() *Metrics {
	m, _ := NewMetrics(noop.NewMeterProvider())
	return m
}

// record adds one export observation.
func (m *Metrics) record(ctx context.Context, f Format, outcome string, elapsed time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("format", f.Extension()),
		attribute.String("outcome", outcome),
	)
	m.exports.Add(ctx, 1, attrs)
	if outcome != OutcomeRejected {
		m.duration.Record(ctx, elapsed.Seconds(), attrs)
	}
}

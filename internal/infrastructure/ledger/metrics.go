package ledger

import (
	"context"
	"time"

	"github.com/erp/connector/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const meterName = "github.com/erp/connector/ledger"

// callMetrics holds the gateway instruments. They bind to the global meter
// provider, which is a no-op unless telemetry is enabled.
type callMetrics struct {
	calls    *telemetry.Counter
	duration *telemetry.Histogram
}

func newCallMetrics() (*callMetrics, error) {
	meter := otel.GetMeterProvider().Meter(meterName)

	calls, err := telemetry.NewCounter(meter,
		"ledger_call_total",
		"Total number of ledger JSON-RPC calls",
		"{call}",
	)
	if err != nil {
		return nil, err
	}

	duration, err := telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name:        "ledger_call_duration_seconds",
		Description: "Ledger JSON-RPC call latency in seconds",
		Unit:        "s",
		Boundaries:  telemetry.HTTPDurationBuckets,
	})
	if err != nil {
		return nil, err
	}

	return &callMetrics{calls: calls, duration: duration}, nil
}

func (m *callMetrics) record(ctx context.Context, elapsed time.Duration, attrs ...attribute.KeyValue) {
	if m == nil {
		return
	}
	m.calls.Inc(ctx, attrs...)
	m.duration.RecordDuration(ctx, elapsed, attrs...)
}

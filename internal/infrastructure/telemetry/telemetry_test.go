package telemetry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/erp/connector/internal/domain/shared"
	"github.com/erp/connector/internal/infrastructure/telemetry"
)

// setupTestTracer installs an in-memory span recorder as the global provider
func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))

	original := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(original)
		_ = tp.Shutdown(context.Background())
	})
	return sr
}

func TestSetup_Disabled(t *testing.T) {
	tel, err := telemetry.Setup(context.Background(), telemetry.Config{ServiceName: "connector"}, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.False(t, tel.IsEnabled())
	assert.False(t, tel.ZapCore(zapcore.InfoLevel).Enabled(zapcore.ErrorLevel))
	assert.NoError(t, tel.Shutdown(context.Background()))
	assert.NoError(t, tel.Shutdown(context.Background()))
}

func TestSetup_ProfilerRequiresAddress(t *testing.T) {
	_, err := telemetry.Setup(context.Background(), telemetry.Config{
		Profiling: telemetry.ProfilerConfig{Enabled: true, ApplicationName: "connector"},
	}, zap.NewNop())
	assert.Error(t, err)
}

func TestStartSpan(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartSpan(context.Background(), "ledger.res.partner.create",
		telemetry.WithSpanKind(trace.SpanKindClient),
		telemetry.WithAttribute("ledger.model", "res.partner"),
		telemetry.WithAttribute("ledger.uid", int64(2)),
	)
	telemetry.SetAttributes(span, "records", 3, 42, "skipped")
	telemetry.AddEvent(span, "retry", "attempt", 1)
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	got := spans[0]
	assert.Equal(t, "ledger.res.partner.create", got.Name())
	assert.Equal(t, trace.SpanKindClient, got.SpanKind())
	assert.Contains(t, got.Attributes(), attribute.String("ledger.model", "res.partner"))
	assert.Contains(t, got.Attributes(), attribute.Int64("ledger.uid", 2))
	assert.Contains(t, got.Attributes(), attribute.Int("records", 3))
	require.Len(t, got.Events(), 1)
	assert.Equal(t, "retry", got.Events()[0].Name)
}

func TestRecordError(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartSpan(context.Background(), "op")
	telemetry.RecordError(span, nil)
	telemetry.RecordError(span, errors.New("boom"))
	span.End()

	got := sr.Ended()[0]
	assert.Equal(t, codes.Error, got.Status().Code)
	assert.Equal(t, "boom", got.Status().Description)
}

func TestPipelineHook(t *testing.T) {
	sr := setupTestTracer(t)
	core, recorded := observer.New(zapcore.DebugLevel)

	type state struct{ n int }
	p := shared.NewPipeline[state]("partner.create", telemetry.PipelineHook(zap.New(core))).
		Then("create partner", func(_ context.Context, s *state) error { s.n++; return nil }).
		Then("attach bank accounts", func(context.Context, *state) error {
			return shared.NewBackendError("rejected", nil)
		})

	err := p.Run(context.Background(), &state{})
	require.Error(t, err)

	spans := sr.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "partner.create.create partner", spans[0].Name())
	assert.Equal(t, codes.Error, spans[1].Status().Code)

	assert.Equal(t, 1, recorded.FilterMessage("Pipeline step done").Len())
	failed := recorded.FilterMessage("Pipeline step failed").All()
	require.Len(t, failed, 1)
	assert.Equal(t, "backend_rejected", failed[0].ContextMap()["kind"])
}

func TestCounterAndHistogram(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	meter := mp.Meter("test")

	counter, err := telemetry.NewCounter(meter, "ledger_call_total", "calls", "{call}")
	require.NoError(t, err)
	hist, err := telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name:       "ledger_call_duration_seconds",
		Unit:       "s",
		Boundaries: telemetry.HTTPDurationBuckets,
	})
	require.NoError(t, err)

	ctx := context.Background()
	outcome := attribute.String("outcome", "ok")
	counter.Inc(ctx, outcome)
	counter.Add(ctx, 2, outcome)
	hist.RecordDuration(ctx, 120*time.Millisecond, outcome)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	byName := map[string]metricdata.Metrics{}
	for _, m := range rm.ScopeMetrics[0].Metrics {
		byName[m.Name] = m
	}

	sum, ok := byName["ledger_call_total"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	assert.Equal(t, int64(3), sum.DataPoints[0].Value)

	h, ok := byName["ledger_call_duration_seconds"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	assert.Equal(t, uint64(1), h.DataPoints[0].Count)
	assert.InDelta(t, 0.12, h.DataPoints[0].Sum, 1e-9)
}

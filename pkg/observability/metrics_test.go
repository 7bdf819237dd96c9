package observability_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Observe(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := observability.NewMetrics(reg)

	m.ObserveTick("wheel_1.speed", 0.0001)
	m.ObserveTick("wheel_1.speed", 0.0002)
	m.ObserveSample("throttle")
	m.ObserveRebind("brake_1")
	m.ObservePanic("bad")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Ticks.WithLabelValues("wheel_1.speed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Samples.WithLabelValues("throttle")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Rebinds.WithLabelValues("brake_1")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TickPanics.WithLabelValues("bad")))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *observability.Metrics
	assert.NotPanics(t, func() {
		m.ObserveTick("x", 1)
		m.ObserveSample("x")
		m.ObserveRebind("x")
		m.ObservePanic("x")
	})
}

func TestMergeHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	calls := 0
	counting := domain.LifecycleHooks{
		OnSample: func(ctx context.Context, e *domain.SampleEvent) { calls++ },
	}
	hooks := observability.MergeHooks(observability.LoggingHooks(logger), counting, domain.LifecycleHooks{})

	hooks.OnSample(context.Background(), &domain.SampleEvent{Label: "throttle", Value: 0.5})
	hooks.OnStart(context.Background(), &domain.EngineEvent{Graph: "demo", Tickers: 3})

	assert.Equal(t, 1, calls)
	assert.Contains(t, buf.String(), "label=throttle")
	assert.Contains(t, buf.String(), "tickers=3")
}

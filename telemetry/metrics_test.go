//go:build unit

package telemetry

import (
	"context"
	"testing"

	"github.com/LerianStudio/ledger-sdk-golang/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestFactory(t *testing.T) (*MetricsFactory, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	factory, err := NewMetricsFactory(provider.Meter("test-telemetry"), &log.NoneLogger{})
	require.NoError(t, err)

	return factory, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()

	var rm metricdata.ResourceMetrics

	require.NoError(t, reader.Collect(context.Background(), &rm))

	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}

	return nil
}

func TestNewMetricsFactory_NilMeter(t *testing.T) {
	_, err := NewMetricsFactory(nil, &log.NoneLogger{})
	assert.ErrorIs(t, err, ErrNilMeter)
}

func TestMetricsFactory_AddCounter(t *testing.T) {
	factory, reader := newTestFactory(t)
	ctx := context.Background()

	factory.AddCounter(ctx, MetricRetryAttempts, 1, attribute.String("operation", "submit"))
	factory.AddCounter(ctx, MetricRetryAttempts, 2, attribute.String("operation", "submit"))

	rm := collect(t, reader)

	m := findMetric(rm, MetricRetryAttempts.Name)
	require.NotNil(t, m)

	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "expected Sum[int64], got %T", m.Data)
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(3), sum.DataPoints[0].Value)
}

func TestMetricsFactory_CachesInstruments(t *testing.T) {
	factory, _ := newTestFactory(t)

	first, err := factory.Int64Counter(MetricRequests)
	require.NoError(t, err)

	second, err := factory.Int64Counter(MetricRequests)
	require.NoError(t, err)

	assert.Same(t, first, second)
}

func TestNopFactory_DoesNotPanic(t *testing.T) {
	factory := NewNopFactory()

	assert.NotPanics(t, func() {
		factory.AddCounter(context.Background(), MetricCircuitRejections, 1)
	})
}

func TestNilFactory_AddCounter(t *testing.T) {
	var factory *MetricsFactory

	assert.NotPanics(t, func() {
		factory.AddCounter(context.Background(), MetricRequests, 1)
	})
}

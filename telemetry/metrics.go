package telemetry

import (
	"context"
	"errors"
	"sync"

	"github.com/LerianStudio/ledger-sdk-golang/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// ErrNilMeter indicates that a nil OTEL meter was provided.
var ErrNilMeter = errors.New("metric meter cannot be nil")

// Metric describes an instrument the factory can create.
type Metric struct {
	Name        string
	Description string
	Unit        string
}

// Pre-configured SDK metrics.
var (
	// MetricRetryAttempts counts individual retry attempts per operation.
	MetricRetryAttempts = Metric{
		Name:        "ledger_client_retry_attempts",
		Unit:        "1",
		Description: "Counts retry attempts performed by the retry executor.",
	}

	// MetricCircuitStateChanges counts breaker state transitions.
	MetricCircuitStateChanges = Metric{
		Name:        "ledger_client_circuit_state_changes",
		Unit:        "1",
		Description: "Counts circuit breaker state transitions.",
	}

	// MetricCircuitRejections counts calls rejected while a breaker is open.
	MetricCircuitRejections = Metric{
		Name:        "ledger_client_circuit_rejections",
		Unit:        "1",
		Description: "Counts calls rejected fast by an open circuit breaker.",
	}

	// MetricRequests counts logical calls routed through the resilient sender.
	MetricRequests = Metric{
		Name:        "ledger_client_requests",
		Unit:        "1",
		Description: "Counts logical calls executed by the resilient sender.",
	}
)

// MetricsFactory creates and caches OpenTelemetry instruments. It is safe
// for concurrent use; instruments are created lazily and cached in a
// sync.Map keyed by metric name.
type MetricsFactory struct {
	meter    metric.Meter
	counters sync.Map // string -> metric.Int64Counter
	logger   log.Logger
}

// NewMetricsFactory creates a factory backed by the given meter.
func NewMetricsFactory(meter metric.Meter, logger log.Logger) (*MetricsFactory, error) {
	if meter == nil {
		return nil, ErrNilMeter
	}

	if logger == nil {
		logger = &log.NoneLogger{}
	}

	return &MetricsFactory{meter: meter, logger: logger}, nil
}

// NewNopFactory returns a factory backed by OpenTelemetry's no-op meter.
// Safe as a fallback when a real meter is unavailable.
func NewNopFactory() *MetricsFactory {
	return &MetricsFactory{
		meter:  noop.NewMeterProvider().Meter("nop"),
		logger: &log.NoneLogger{},
	}
}

// Int64Counter returns the cached counter for m, creating it on first use.
func (f *MetricsFactory) Int64Counter(m Metric) (metric.Int64Counter, error) {
	if cached, ok := f.counters.Load(m.Name); ok {
		return cached.(metric.Int64Counter), nil
	}

	counter, err := f.meter.Int64Counter(
		m.Name,
		metric.WithDescription(m.Description),
		metric.WithUnit(m.Unit),
	)
	if err != nil {
		return nil, err
	}

	actual, _ := f.counters.LoadOrStore(m.Name, counter)

	return actual.(metric.Int64Counter), nil
}

// AddCounter increments the counter for m. Instrument creation failures are
// logged and dropped; metrics must never break the caller's path.
func (f *MetricsFactory) AddCounter(ctx context.Context, m Metric, value int64, attrs ...attribute.KeyValue) {
	if f == nil {
		return
	}

	counter, err := f.Int64Counter(m)
	if err != nil {
		f.logger.Warnf("metrics: failed to create counter %s: %v", m.Name, err)
		return
	}

	counter.Add(ctx, value, metric.WithAttributes(attrs...))
}

package retry

import (
	"context"
	"fmt"

	"github.com/LerianStudio/ledger-sdk-golang/backoff"
	"github.com/LerianStudio/ledger-sdk-golang/classify"
	"github.com/LerianStudio/ledger-sdk-golang/log"
	"github.com/LerianStudio/ledger-sdk-golang/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// Operation is a single logical call against the remote service.
type Operation[T any] func(ctx context.Context) (T, error)

// ExhaustedError is returned when every attempt allowed by the policy
// failed with a retryable error. It carries the last classification so
// callers can distinguish what the operation kept failing with.
type ExhaustedError struct {
	Operation string
	Attempts  int
	Last      *classify.ClassifiedError
}

// Error implements the error interface.
func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("operation %q exhausted %d attempts: %v", e.Operation, e.Attempts, e.Last)
}

// Unwrap returns the last classified error.
func (e *ExhaustedError) Unwrap() error {
	return e.Last
}

type config struct {
	logger  log.Logger
	metrics *telemetry.MetricsFactory
}

// Option configures a Do call.
type Option func(*config)

// WithLogger sets the logger used for per-attempt diagnostics.
func WithLogger(logger log.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithMetrics sets the factory used to record retry attempts.
func WithMetrics(factory *telemetry.MetricsFactory) Option {
	return func(c *config) {
		c.metrics = factory
	}
}

// Do invokes op until it succeeds, fails with a non-retryable error, or
// exhausts policy.MaxAttempts. Attempts are strictly sequential; the sleep
// between attempts honors ctx cancellation.
func Do[T any](ctx context.Context, name string, policy Policy, op Operation[T], opts ...Option) (T, error) {
	var zero T

	cfg := config{
		logger:  &log.NoneLogger{},
		metrics: telemetry.NewNopFactory(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := policy.Validate(); err != nil {
		return zero, err
	}

	for attempt := 1; ; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}

		classified := classify.Classify(err)

		cfg.metrics.AddCounter(ctx, telemetry.MetricRetryAttempts, 1,
			attribute.String("operation", name),
			attribute.String("kind", string(classified.Kind)))

		if !classified.Retryable {
			cfg.logger.Warnf("Operation %q failed with non-retryable %s error: %v", name, classified.Kind, classified.Err)

			return zero, classified
		}

		if attempt == policy.MaxAttempts {
			cfg.logger.Errorf("Operation %q gave up after %d attempts (last: %s)", name, attempt, classified.Kind)

			return zero, &ExhaustedError{Operation: name, Attempts: attempt, Last: classified}
		}

		delay := ComputeDelay(attempt, policy)
		cfg.logger.Infof("Operation %q attempt %d/%d failed (%s), retrying in %v", name, attempt, policy.MaxAttempts, classified.Kind, delay)

		if err := backoff.SleepWithContext(ctx, delay); err != nil {
			return zero, err
		}
	}
}

package resilience

import (
	"context"
	"fmt"

	"github.com/LerianStudio/ledger-sdk-golang/circuitbreaker"
	"github.com/LerianStudio/ledger-sdk-golang/log"
	"github.com/LerianStudio/ledger-sdk-golang/retry"
	"github.com/LerianStudio/ledger-sdk-golang/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

const tracerName = "github.com/LerianStudio/ledger-sdk-golang/resilience"

// Sender routes every call through retry and a single circuit breaker.
type Sender struct {
	breaker *circuitbreaker.Breaker
	logger  log.Logger
	metrics *telemetry.MetricsFactory
	tracer  trace.Tracer
}

// senderOptions collects construction-time settings.
type senderOptions struct {
	breakerConfig circuitbreaker.Config
	logger        log.Logger
	metrics       *telemetry.MetricsFactory
	tracer        trace.Tracer
	onStateChange circuitbreaker.StateChangeFunc
}

// SenderOption configures a Sender.
type SenderOption func(*senderOptions)

// WithLogger sets the sender's logger.
func WithLogger(logger log.Logger) SenderOption {
	return func(o *senderOptions) {
		o.logger = logger
	}
}

// WithBreakerConfig overrides the default circuit breaker configuration.
func WithBreakerConfig(config circuitbreaker.Config) SenderOption {
	return func(o *senderOptions) {
		o.breakerConfig = config
	}
}

// WithMetrics wires a metrics factory for request and retry counters.
func WithMetrics(factory *telemetry.MetricsFactory) SenderOption {
	return func(o *senderOptions) {
		o.metrics = factory
	}
}

// WithTracerProvider wires a tracer provider; each Execute call runs inside
// its own span.
func WithTracerProvider(provider trace.TracerProvider) SenderOption {
	return func(o *senderOptions) {
		o.tracer = provider.Tracer(tracerName)
	}
}

// WithStateChangeFunc observes the sender's breaker transitions.
func WithStateChangeFunc(fn circuitbreaker.StateChangeFunc) SenderOption {
	return func(o *senderOptions) {
		o.onStateChange = fn
	}
}

// NewSender creates a sender whose breaker carries the given name.
func NewSender(name string, opts ...SenderOption) (*Sender, error) {
	options := senderOptions{
		breakerConfig: circuitbreaker.DefaultConfig(),
		logger:        &log.NoneLogger{},
		metrics:       telemetry.NewNopFactory(),
		tracer:        tracenoop.NewTracerProvider().Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(&options)
	}

	var breakerOpts []circuitbreaker.BreakerOption
	if options.onStateChange != nil {
		breakerOpts = append(breakerOpts, circuitbreaker.WithStateChangeFunc(options.onStateChange))
	}

	breaker, err := circuitbreaker.NewBreaker(name, options.breakerConfig, breakerOpts...)
	if err != nil {
		return nil, fmt.Errorf("create sender: %w", err)
	}

	return &Sender{
		breaker: breaker,
		logger:  options.logger,
		metrics: options.metrics,
		tracer:  options.tracer,
	}, nil
}

// Execute runs op through retry inside the circuit breaker. The breaker sees
// one failure per fully exhausted call, never per attempt. May return a
// classify.ClassifiedError, a retry.ExhaustedError, or
// circuitbreaker.ErrOpenCircuit.
func (s *Sender) Execute(ctx context.Context, name string, policy retry.Policy, op retry.Operation[any]) (any, error) {
	return Execute(ctx, s, name, policy, op)
}

// ExecuteCritical runs op under the critical retry policy.
func (s *Sender) ExecuteCritical(ctx context.Context, name string, op retry.Operation[any]) (any, error) {
	return Execute(ctx, s, name, retry.CriticalPolicy(), op)
}

// ExecuteReadOnly runs op under the read-only retry policy.
func (s *Sender) ExecuteReadOnly(ctx context.Context, name string, op retry.Operation[any]) (any, error) {
	return Execute(ctx, s, name, retry.ReadOnlyPolicy(), op)
}

// State returns the breaker state.
func (s *Sender) State() circuitbreaker.State {
	return s.breaker.State()
}

// Reset returns the breaker to a pristine closed state.
func (s *Sender) Reset() {
	s.breaker.Reset()
}

// Execute is the generic form of Sender.Execute, preserving the operation's
// result type. The typed result is carried out of the breaker closure
// directly, so a successful operation may return any value, nil included.
func Execute[T any](ctx context.Context, s *Sender, name string, policy retry.Policy, op retry.Operation[T]) (T, error) {
	var result T

	ctx, span := s.tracer.Start(ctx, "ledger.execute",
		trace.WithAttributes(attribute.String("operation", name)))
	defer span.End()

	s.metrics.AddCounter(ctx, telemetry.MetricRequests, 1, attribute.String("operation", name))

	_, err := s.breaker.Execute(func() (any, error) {
		value, err := retry.Do(ctx, name, policy, op,
			retry.WithLogger(s.logger),
			retry.WithMetrics(s.metrics))
		if err != nil {
			return nil, err
		}

		result = value

		return value, nil
	})
	if err != nil {
		var zero T

		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		return zero, err
	}

	span.SetStatus(codes.Ok, "")

	return result, nil
}

package circuitbreaker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/LerianStudio/ledger-sdk-golang/log"
	"github.com/LerianStudio/ledger-sdk-golang/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// StateChangeListener is notified when a circuit breaker changes state.
type StateChangeListener interface {
	// OnStateChange is called when a circuit breaker changes state.
	OnStateChange(serviceName string, from State, to State)
}

// Manager manages circuit breakers for external services.
type Manager interface {
	// GetOrCreate returns the existing circuit breaker or creates a new one.
	GetOrCreate(serviceName string, config Config) (*Breaker, error)

	// Execute runs a function through the named circuit breaker.
	Execute(serviceName string, fn func() (any, error)) (any, error)

	// GetState returns the current state.
	GetState(serviceName string) State

	// GetCounts returns the current counts for a circuit breaker.
	GetCounts(serviceName string) Counts

	// IsHealthy returns true if the circuit breaker is closed.
	IsHealthy(serviceName string) bool

	// Reset resets a circuit breaker to the closed state.
	Reset(serviceName string)

	// RegisterStateChangeListener registers a listener for state changes.
	RegisterStateChangeListener(listener StateChangeListener)
}

type manager struct {
	breakers  map[string]*Breaker
	listeners []StateChangeListener
	mu        sync.RWMutex
	logger    log.Logger
	metrics   *telemetry.MetricsFactory
}

// ManagerOption configures a Manager.
type ManagerOption func(*manager)

// WithMetrics wires a metrics factory so the manager records state changes
// and open-circuit rejections.
func WithMetrics(factory *telemetry.MetricsFactory) ManagerOption {
	return func(m *manager) {
		m.metrics = factory
	}
}

// NewManager creates a new circuit breaker manager.
//
//nolint:ireturn
func NewManager(logger log.Logger, opts ...ManagerOption) Manager {
	if logger == nil {
		logger = &log.NoneLogger{}
	}

	m := &manager{
		breakers:  make(map[string]*Breaker),
		listeners: make([]StateChangeListener, 0),
		logger:    logger,
		metrics:   telemetry.NewNopFactory(),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

func (m *manager) GetOrCreate(serviceName string, config Config) (*Breaker, error) {
	m.mu.RLock()
	breaker, exists := m.breakers[serviceName]
	m.mu.RUnlock()

	if exists {
		return breaker, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if breaker, exists = m.breakers[serviceName]; exists {
		return breaker, nil
	}

	breaker, err := NewBreaker(serviceName, config, WithStateChangeFunc(m.handleStateChange))
	if err != nil {
		return nil, err
	}

	m.breakers[serviceName] = breaker

	m.logger.Infof("Created circuit breaker for service: %s", serviceName)

	return breaker, nil
}

func (m *manager) Execute(serviceName string, fn func() (any, error)) (any, error) {
	m.mu.RLock()
	breaker, exists := m.breakers[serviceName]
	m.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("circuit breaker not found for service: %s (call GetOrCreate first)", serviceName)
	}

	result, err := breaker.Execute(fn)
	if err != nil && errors.Is(err, ErrOpenCircuit) {
		m.logger.Warnf("Circuit breaker [%s] is OPEN - request rejected immediately", serviceName)
		m.metrics.AddCounter(context.Background(), telemetry.MetricCircuitRejections, 1,
			attribute.String("service", serviceName))

		return nil, fmt.Errorf("service %s is currently unavailable: %w", serviceName, err)
	}

	return result, err
}

func (m *manager) GetState(serviceName string) State {
	m.mu.RLock()
	breaker, exists := m.breakers[serviceName]
	m.mu.RUnlock()

	if !exists {
		return StateUnknown
	}

	return breaker.State()
}

func (m *manager) GetCounts(serviceName string) Counts {
	m.mu.RLock()
	breaker, exists := m.breakers[serviceName]
	m.mu.RUnlock()

	if !exists {
		return Counts{}
	}

	return breaker.Counts()
}

func (m *manager) IsHealthy(serviceName string) bool {
	state := m.GetState(serviceName)
	// Only the closed state is considered healthy. Open and half-open both
	// need health checker intervention.
	isHealthy := state == StateClosed
	m.logger.Debugf("IsHealthy check: service=%s, state=%s, isHealthy=%v", serviceName, state, isHealthy)

	return isHealthy
}

func (m *manager) Reset(serviceName string) {
	m.mu.RLock()
	breaker, exists := m.breakers[serviceName]
	m.mu.RUnlock()

	if !exists {
		return
	}

	m.logger.Infof("Resetting circuit breaker for service: %s", serviceName)
	breaker.Reset()
}

// RegisterStateChangeListener registers a listener for state change notifications.
func (m *manager) RegisterStateChangeListener(listener StateChangeListener) {
	if listener == nil {
		m.logger.Warnf("Attempted to register a nil state change listener")

		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.listeners = append(m.listeners, listener)
	m.logger.Debugf("Registered state change listener (total: %d)", len(m.listeners))
}

// handleStateChange processes state changes and notifies listeners.
func (m *manager) handleStateChange(serviceName string, from State, to State) {
	m.logger.Warnf("Circuit Breaker [%s] state changed: %s -> %s", serviceName, from, to)

	switch to {
	case StateOpen:
		m.logger.Errorf("Circuit Breaker [%s] OPENED - service is unhealthy, requests will fast-fail", serviceName)
	case StateHalfOpen:
		m.logger.Infof("Circuit Breaker [%s] HALF-OPEN - testing service recovery", serviceName)
	case StateClosed:
		m.logger.Infof("Circuit Breaker [%s] CLOSED - service is healthy", serviceName)
	}

	m.metrics.AddCounter(context.Background(), telemetry.MetricCircuitStateChanges, 1,
		attribute.String("service", serviceName),
		attribute.String("from", string(from)),
		attribute.String("to", string(to)))

	m.mu.RLock()
	listeners := make([]StateChangeListener, len(m.listeners))
	copy(listeners, m.listeners)
	m.mu.RUnlock()

	for _, listener := range listeners {
		// Notify in a goroutine to avoid blocking breaker operations.
		go func(l StateChangeListener) {
			defer func() {
				if r := recover(); r != nil {
					m.logger.Errorf("Circuit breaker state change listener panic for service %s: %v", serviceName, r)
				}
			}()

			l.OnStateChange(serviceName, from, to)
		}(listener)
	}
}

package circuitbreaker

import (
	"context"
	"errors"
	"maps"
	"sync"
	"time"

	"github.com/LerianStudio/ledger-sdk-golang/log"
)

var (
	// ErrInvalidHealthCheckInterval indicates that the health check interval must be positive.
	ErrInvalidHealthCheckInterval = errors.New("circuitbreaker: health check interval must be positive")
	// ErrInvalidHealthCheckTimeout indicates that the health check timeout must be positive.
	ErrInvalidHealthCheckTimeout = errors.New("circuitbreaker: health check timeout must be positive")
)

// HealthCheckFunc defines a function that checks service health.
type HealthCheckFunc func(ctx context.Context) error

// HealthChecker performs periodic health checks on services and manages
// circuit breaker recovery.
type HealthChecker interface {
	// Register adds a service to health check.
	Register(serviceName string, healthCheckFn HealthCheckFunc)

	// Start begins the health check loop in a separate goroutine.
	Start()

	// Stop gracefully stops the health checker.
	Stop()

	// GetHealthStatus returns the current health status of all services.
	GetHealthStatus() map[string]string

	// StateChangeListener lets the checker react to breaker transitions.
	StateChangeListener
}

// healthChecker performs periodic health checks and resets breakers whose
// services have recovered.
type healthChecker struct {
	manager        Manager
	services       map[string]HealthCheckFunc
	interval       time.Duration
	checkTimeout   time.Duration
	logger         log.Logger
	stopChan       chan struct{}
	stopOnce       sync.Once
	immediateCheck chan string
	wg             sync.WaitGroup
	mu             sync.RWMutex
}

// NewHealthChecker creates a new health checker.
// interval: how often to run health checks.
// checkTimeout: timeout for each individual health check operation.
//
//nolint:ireturn
func NewHealthChecker(manager Manager, interval, checkTimeout time.Duration, logger log.Logger) (HealthChecker, error) {
	if interval <= 0 {
		return nil, ErrInvalidHealthCheckInterval
	}

	if checkTimeout <= 0 {
		return nil, ErrInvalidHealthCheckTimeout
	}

	if logger == nil {
		logger = &log.NoneLogger{}
	}

	return &healthChecker{
		manager:        manager,
		services:       make(map[string]HealthCheckFunc),
		interval:       interval,
		checkTimeout:   checkTimeout,
		logger:         logger,
		stopChan:       make(chan struct{}),
		immediateCheck: make(chan string, 10),
	}, nil
}

// Register adds a service to health check.
func (hc *healthChecker) Register(serviceName string, healthCheckFn HealthCheckFunc) {
	hc.mu.Lock()
	defer hc.mu.Unlock()

	hc.services[serviceName] = healthCheckFn
	hc.logger.Infof("Registered health check for service: %s", serviceName)
}

// Start begins the health check loop.
func (hc *healthChecker) Start() {
	hc.wg.Add(1)

	go hc.healthCheckLoop()

	hc.logger.Infof("Health checker started - checking services every %v", hc.interval)
}

// Stop gracefully stops the health checker. Safe to call more than once.
func (hc *healthChecker) Stop() {
	hc.stopOnce.Do(func() {
		close(hc.stopChan)
	})

	hc.wg.Wait()
	hc.logger.Info("Health checker stopped")
}

func (hc *healthChecker) healthCheckLoop() {
	defer hc.wg.Done()

	ticker := time.NewTicker(hc.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			hc.performHealthChecks()
		case serviceName := <-hc.immediateCheck:
			hc.logger.Debugf("Triggering immediate health check for service: %s", serviceName)
			hc.checkServiceHealth(serviceName)
		case <-hc.stopChan:
			return
		}
	}
}

func (hc *healthChecker) performHealthChecks() {
	hc.mu.RLock()
	// Snapshot to avoid holding the lock during checks.
	services := make(map[string]HealthCheckFunc, len(hc.services))
	maps.Copy(services, hc.services)
	hc.mu.RUnlock()

	hc.logger.Debug("Performing health checks on registered services...")

	unhealthyCount := 0
	recoveredCount := 0

	for serviceName, healthCheckFn := range services {
		if hc.manager.IsHealthy(serviceName) {
			continue
		}

		unhealthyCount++

		if hc.probe(serviceName, healthCheckFn) {
			recoveredCount++
		}
	}

	if unhealthyCount > 0 {
		hc.logger.Infof("Health check complete: %d services needed healing, %d recovered", unhealthyCount, recoveredCount)
	} else {
		hc.logger.Debug("All services healthy")
	}
}

// probe runs one health check and resets the breaker on recovery. Reports
// whether the service recovered.
func (hc *healthChecker) probe(serviceName string, healthCheckFn HealthCheckFunc) bool {
	hc.logger.Infof("Attempting to heal service: %s (circuit breaker is open)", serviceName)

	ctx, cancel := context.WithTimeout(context.Background(), hc.checkTimeout)
	err := healthCheckFn(ctx)

	cancel()

	if err != nil {
		hc.logger.Warnf("Service %s still unhealthy: %v - will retry in %v", serviceName, err, hc.interval)

		return false
	}

	hc.logger.Infof("Service %s recovered - resetting circuit breaker", serviceName)
	hc.manager.Reset(serviceName)

	return true
}

// GetHealthStatus returns the current health status of all services.
func (hc *healthChecker) GetHealthStatus() map[string]string {
	hc.mu.RLock()
	defer hc.mu.RUnlock()

	status := make(map[string]string)

	for serviceName := range hc.services {
		status[serviceName] = string(hc.manager.GetState(serviceName))
	}

	return status
}

// OnStateChange implements the StateChangeListener interface. A breaker that
// just opened gets an immediate health check instead of waiting for the next
// tick.
func (hc *healthChecker) OnStateChange(serviceName string, _ State, to State) {
	if to != StateOpen {
		return
	}

	hc.logger.Infof("Circuit breaker opened for %s - scheduling immediate health check", serviceName)

	// Non-blocking send to avoid deadlock.
	select {
	case hc.immediateCheck <- serviceName:
	default:
		hc.logger.Warnf("Immediate health check channel full for %s, will check on next interval", serviceName)
	}
}

// checkServiceHealth performs a health check on a specific service.
func (hc *healthChecker) checkServiceHealth(serviceName string) {
	hc.mu.RLock()
	healthCheckFn, exists := hc.services[serviceName]
	hc.mu.RUnlock()

	if !exists {
		hc.logger.Warnf("No health check function registered for service: %s", serviceName)
		return
	}

	if hc.manager.IsHealthy(serviceName) {
		hc.logger.Debugf("Service %s is already healthy, skipping check", serviceName)
		return
	}

	hc.probe(serviceName, healthCheckFn)
}

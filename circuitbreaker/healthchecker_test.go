package circuitbreaker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/LerianStudio/ledger-sdk-golang/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHealthChecker_Validation(t *testing.T) {
	manager := NewManager(&log.NoneLogger{})

	_, err := NewHealthChecker(manager, 0, time.Second, &log.NoneLogger{})
	assert.ErrorIs(t, err, ErrInvalidHealthCheckInterval)

	_, err = NewHealthChecker(manager, time.Second, 0, &log.NoneLogger{})
	assert.ErrorIs(t, err, ErrInvalidHealthCheckTimeout)
}

func TestHealthChecker_GetHealthStatus(t *testing.T) {
	manager := NewManager(&log.NoneLogger{})
	checker, err := NewHealthChecker(manager, time.Second, time.Second, &log.NoneLogger{})
	require.NoError(t, err)

	_, err = manager.GetOrCreate("ledger-rpc", DefaultConfig())
	require.NoError(t, err)

	checker.Register("ledger-rpc", func(ctx context.Context) error { return nil })

	status := checker.GetHealthStatus()
	assert.Equal(t, map[string]string{"ledger-rpc": "closed"}, status)
}

func TestHealthChecker_RecoversOpenBreaker(t *testing.T) {
	manager := NewManager(&log.NoneLogger{})
	checker, err := NewHealthChecker(manager, 20*time.Millisecond, time.Second, &log.NoneLogger{})
	require.NoError(t, err)

	_, err = manager.GetOrCreate("ledger-rpc", fastTripConfig())
	require.NoError(t, err)

	var healthy atomic.Bool

	checker.Register("ledger-rpc", func(ctx context.Context) error {
		if healthy.Load() {
			return nil
		}

		return errors.New("still down")
	})

	checker.Start()
	defer checker.Stop()

	for i := 0; i < 3; i++ {
		_, _ = manager.Execute("ledger-rpc", func() (any, error) {
			return nil, errors.New("service error")
		})
	}

	require.Equal(t, StateOpen, manager.GetState("ledger-rpc"))

	// Service stays down for a couple of check cycles.
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, StateOpen, manager.GetState("ledger-rpc"))

	healthy.Store(true)

	assert.Eventually(t, func() bool {
		return manager.GetState("ledger-rpc") == StateClosed
	}, time.Second, 10*time.Millisecond, "breaker should reset once the probe succeeds")
}

func TestHealthChecker_StopIsIdempotent(t *testing.T) {
	manager := NewManager(&log.NoneLogger{})
	checker, err := NewHealthChecker(manager, time.Second, time.Second, &log.NoneLogger{})
	require.NoError(t, err)

	checker.Start()

	checker.Stop()
	assert.NotPanics(t, checker.Stop)
}

func TestHealthChecker_ImmediateCheckOnOpen(t *testing.T) {
	manager := NewManager(&log.NoneLogger{})

	// Long interval: recovery must come from the immediate check, not the tick.
	checker, err := NewHealthChecker(manager, time.Hour, time.Second, &log.NoneLogger{})
	require.NoError(t, err)

	manager.RegisterStateChangeListener(checker)

	_, err = manager.GetOrCreate("ledger-rpc", fastTripConfig())
	require.NoError(t, err)

	var probes atomic.Int32

	checker.Register("ledger-rpc", func(ctx context.Context) error {
		probes.Add(1)
		return nil
	})

	checker.Start()
	defer checker.Stop()

	for i := 0; i < 3; i++ {
		_, _ = manager.Execute("ledger-rpc", func() (any, error) {
			return nil, errors.New("service error")
		})
	}

	assert.Eventually(t, func() bool {
		return probes.Load() >= 1 && manager.GetState("ledger-rpc") == StateClosed
	}, time.Second, 10*time.Millisecond)
}

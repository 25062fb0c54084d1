package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/LerianStudio/ledger-sdk-golang/circuitbreaker"
	"github.com/LerianStudio/ledger-sdk-golang/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func immediatePolicy(maxAttempts int) retry.Policy {
	return retry.Policy{
		MaxAttempts:       maxAttempts,
		InitialDelay:      0,
		MaxDelay:          0,
		BackoffMultiplier: 1,
		JitterFactor:      0,
	}
}

func trippyBreakerConfig() circuitbreaker.Config {
	return circuitbreaker.Config{
		FailureThreshold: 2,
		SuccessThreshold: 1,
		OpenTimeout:      time.Hour,
		FailureWindow:    time.Hour,
	}
}

func TestSender_Success(t *testing.T) {
	sender, err := NewSender("ledger-rpc")
	require.NoError(t, err)

	result, err := Execute(context.Background(), sender, "get-account", immediatePolicy(3),
		func(ctx context.Context) (string, error) {
			return "account-data", nil
		})

	require.NoError(t, err)
	assert.Equal(t, "account-data", result)
	assert.Equal(t, circuitbreaker.StateClosed, sender.State())
}

func TestSender_NilResultIsValidSuccess(t *testing.T) {
	sender, err := NewSender("ledger-rpc")
	require.NoError(t, err)

	// An operation without a meaningful result succeeds with a nil value.
	result, err := sender.Execute(context.Background(), "fire-and-forget", immediatePolicy(3),
		func(ctx context.Context) (any, error) {
			return nil, nil
		})

	require.NoError(t, err)
	assert.Nil(t, result)
	assert.Equal(t, circuitbreaker.StateClosed, sender.State())

	typed, err := Execute(context.Background(), sender, "get-account", immediatePolicy(3),
		func(ctx context.Context) (*struct{}, error) {
			return nil, nil
		})

	require.NoError(t, err)
	assert.Nil(t, typed)
}

func TestSender_RetriedBlipNeverTouchesBreaker(t *testing.T) {
	sender, err := NewSender("ledger-rpc", WithBreakerConfig(trippyBreakerConfig()))
	require.NoError(t, err)

	// Many calls, each failing transiently once before succeeding. Because
	// the breaker only sees whole-call outcomes, it must stay closed.
	for i := 0; i < 10; i++ {
		calls := 0

		_, err := Execute(context.Background(), sender, "get-account", immediatePolicy(3),
			func(ctx context.Context) (string, error) {
				calls++
				if calls == 1 {
					return "", errors.New("connection reset")
				}

				return "ok", nil
			})
		require.NoError(t, err)
	}

	assert.Equal(t, circuitbreaker.StateClosed, sender.State())
}

func TestSender_ExhaustedCallsCountAsOneBreakerFailure(t *testing.T) {
	sender, err := NewSender("ledger-rpc", WithBreakerConfig(trippyBreakerConfig()))
	require.NoError(t, err)

	attempts := 0

	failAlways := func(ctx context.Context) (string, error) {
		attempts++
		return "", errors.New("network down")
	}

	// Two exhausted calls of three attempts each trip the breaker.
	for i := 0; i < 2; i++ {
		_, err := Execute(context.Background(), sender, "get-account", immediatePolicy(3), failAlways)

		var exhausted *retry.ExhaustedError
		require.ErrorAs(t, err, &exhausted)
	}

	assert.Equal(t, 6, attempts)
	assert.Equal(t, circuitbreaker.StateOpen, sender.State())

	// Third call is rejected without invoking the operation at all.
	_, err = Execute(context.Background(), sender, "get-account", immediatePolicy(3), failAlways)
	require.ErrorIs(t, err, circuitbreaker.ErrOpenCircuit)
	assert.Equal(t, 6, attempts)
}

func TestSender_NonRetryableBubblesClassified(t *testing.T) {
	sender, err := NewSender("ledger-rpc")
	require.NoError(t, err)

	_, err = Execute(context.Background(), sender, "transfer", immediatePolicy(5),
		func(ctx context.Context) (string, error) {
			return "", errors.New("insufficient funds for transfer")
		})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "insufficient_funds")
}

func TestSender_Reset(t *testing.T) {
	sender, err := NewSender("ledger-rpc", WithBreakerConfig(circuitbreaker.Config{
		FailureThreshold: 1,
		SuccessThreshold: 1,
		OpenTimeout:      time.Hour,
		FailureWindow:    time.Hour,
	}))
	require.NoError(t, err)

	_, _ = Execute(context.Background(), sender, "get-account", immediatePolicy(1),
		func(ctx context.Context) (string, error) {
			return "", errors.New("network down")
		})

	require.Equal(t, circuitbreaker.StateOpen, sender.State())

	sender.Reset()
	assert.Equal(t, circuitbreaker.StateClosed, sender.State())
}

func TestSender_ConvenienceWrappers(t *testing.T) {
	sender, err := NewSender("ledger-rpc")
	require.NoError(t, err)

	result, err := sender.ExecuteReadOnly(context.Background(), "get-balance",
		func(ctx context.Context) (any, error) {
			return 100, nil
		})

	require.NoError(t, err)
	assert.Equal(t, 100, result)

	result, err = sender.ExecuteCritical(context.Background(), "submit",
		func(ctx context.Context) (any, error) {
			return "signature", nil
		})

	require.NoError(t, err)
	assert.Equal(t, "signature", result)
}

func TestSender_InvalidBreakerConfig(t *testing.T) {
	_, err := NewSender("bad", WithBreakerConfig(circuitbreaker.Config{}))
	assert.Error(t, err)
}

func TestSender_StateChangeFuncOption(t *testing.T) {
	var opened bool

	sender, err := NewSender("ledger-rpc",
		WithBreakerConfig(circuitbreaker.Config{
			FailureThreshold: 1,
			SuccessThreshold: 1,
			OpenTimeout:      time.Hour,
			FailureWindow:    time.Hour,
		}),
		WithStateChangeFunc(func(name string, from, to circuitbreaker.State) {
			if to == circuitbreaker.StateOpen {
				opened = true
			}
		}),
	)
	require.NoError(t, err)

	_, _ = Execute(context.Background(), sender, "get-account", immediatePolicy(1),
		func(ctx context.Context) (string, error) {
			return "", errors.New("network down")
		})

	assert.True(t, opened)
}

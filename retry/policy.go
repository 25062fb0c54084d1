package retry

import (
	"fmt"
	"time"

	"github.com/LerianStudio/ledger-sdk-golang/backoff"
	"github.com/go-playground/validator/v10"
)

// Policy is an immutable description of a retry strategy.
type Policy struct {
	// MaxAttempts is the total number of invocations, including the first.
	MaxAttempts int `validate:"gte=1"`
	// InitialDelay is the delay before the second attempt.
	InitialDelay time.Duration `validate:"gte=0"`
	// MaxDelay caps the exponential delay growth.
	MaxDelay time.Duration `validate:"gtefield=InitialDelay"`
	// BackoffMultiplier grows the delay between consecutive attempts.
	BackoffMultiplier float64 `validate:"gte=1"`
	// JitterFactor adds up to delay*JitterFactor of random extra delay.
	JitterFactor float64 `validate:"gte=0,lte=1"`
}

var policyValidator = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the policy invariants.
func (p Policy) Validate() error {
	if err := policyValidator.Struct(p); err != nil {
		return fmt.Errorf("invalid retry policy: %w", err)
	}

	return nil
}

// CriticalPolicy is for operations that must land, e.g. transaction
// submission. Generous attempt budget with long backoff.
func CriticalPolicy() Policy {
	return Policy{
		MaxAttempts:       5,
		InitialDelay:      time.Second,
		MaxDelay:          30 * time.Second,
		BackoffMultiplier: 2,
		JitterFactor:      0.1,
	}
}

// StandardPolicy is the balanced default for most calls.
func StandardPolicy() Policy {
	return Policy{
		MaxAttempts:       3,
		InitialDelay:      500 * time.Millisecond,
		MaxDelay:          10 * time.Second,
		BackoffMultiplier: 2,
		JitterFactor:      0.1,
	}
}

// ReadOnlyPolicy is for cheap idempotent reads where the caller would rather
// fail fast than wait.
func ReadOnlyPolicy() Policy {
	return Policy{
		MaxAttempts:       2,
		InitialDelay:      250 * time.Millisecond,
		MaxDelay:          2 * time.Second,
		BackoffMultiplier: 2,
		JitterFactor:      0.1,
	}
}

// ComputeDelay returns the sleep before attempt+1, for a 1-based attempt:
// exponential backoff capped at MaxDelay, plus proportional jitter. The
// result always lies in [exp, exp*(1+JitterFactor)).
func ComputeDelay(attempt int, policy Policy) time.Duration {
	exponential := backoff.Exponential(policy.InitialDelay, policy.BackoffMultiplier, attempt, policy.MaxDelay)

	return exponential + backoff.ProportionalJitter(exponential, policy.JitterFactor)
}

package circuitbreaker

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config holds circuit breaker configuration. Values are immutable once the
// breaker is created.
type Config struct {
	// FailureThreshold is the number of failures inside FailureWindow that
	// trips the breaker open.
	FailureThreshold int `validate:"gte=1"`
	// SuccessThreshold is the number of consecutive half-open successes
	// required to close the breaker again.
	SuccessThreshold int `validate:"gte=1"`
	// OpenTimeout is how long the breaker stays open before the next call
	// probes the service in half-open state.
	OpenTimeout time.Duration `validate:"gte=0"`
	// FailureWindow is the trailing window inside which failures count
	// toward FailureThreshold.
	FailureWindow time.Duration `validate:"gte=0"`
}

var configValidator = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the configuration invariants.
func (c Config) Validate() error {
	if err := configValidator.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	return nil
}

// DefaultConfig provides balanced settings for most services.
func DefaultConfig() Config {
	return Config{
		FailureThreshold: 5,
		SuccessThreshold: 2,
		OpenTimeout:      60 * time.Second,
		FailureWindow:    5 * time.Minute,
	}
}

// AggressiveConfig for services requiring fast failure detection.
func AggressiveConfig() Config {
	return Config{
		FailureThreshold: 3,
		SuccessThreshold: 1,
		OpenTimeout:      30 * time.Second,
		FailureWindow:    time.Minute,
	}
}

// ConservativeConfig for services that should tolerate more failures.
func ConservativeConfig() Config {
	return Config{
		FailureThreshold: 10,
		SuccessThreshold: 3,
		OpenTimeout:      2 * time.Minute,
		FailureWindow:    10 * time.Minute,
	}
}

package backoff

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"math"
	mrand "math/rand"
	"time"
)

// Exponential calculates the exponential delay for a 1-based attempt number:
// initial * multiplier^(attempt-1), capped at max. Attempts below 1 are
// treated as 1. A multiplier below 1 is treated as 1 (constant delay).
func Exponential(initial time.Duration, multiplier float64, attempt int, max time.Duration) time.Duration {
	if initial <= 0 {
		return 0
	}

	if attempt < 1 {
		attempt = 1
	}

	if multiplier < 1 {
		multiplier = 1
	}

	delay := float64(initial) * math.Pow(multiplier, float64(attempt-1))
	if delay > float64(max) || math.IsInf(delay, 1) {
		return max
	}

	return time.Duration(delay)
}

// ProportionalJitter returns a random additional delay in [0, d*factor).
// Factor is clamped to [0, 1]. Uses crypto/rand for randomness, falling back
// to a seeded math/rand PRNG if the entropy source fails.
func ProportionalJitter(d time.Duration, factor float64) time.Duration {
	if d <= 0 || factor <= 0 {
		return 0
	}

	if factor > 1 {
		factor = 1
	}

	span := int64(float64(d) * factor)
	if span <= 0 {
		return 0
	}

	return time.Duration(randInt64N(span))
}

// fallbackDivisor is used when crypto/rand fails completely.
const fallbackDivisor = 2

// randInt64N returns a uniform random value in [0, n). It reads entropy from
// crypto/rand; if that fails it degrades to a midpoint value so backoff never
// stalls waiting for entropy.
func randInt64N(n int64) int64 {
	var seed [8]byte

	_, err := rand.Read(seed[:])
	if err != nil {
		return n / fallbackDivisor
	}

	rng := mrand.New(
		mrand.NewSource(int64(binary.LittleEndian.Uint64(seed[:]))),
	) // #nosec G404 -- seeded from crypto/rand

	return rng.Int63n(n)
}

// SleepWithContext sleeps for the specified duration but respects context
// cancellation. Returns nil if the sleep completes, or an error if the
// context is cancelled. Returns immediately (nil) for zero or negative
// durations.
func SleepWithContext(ctx context.Context, duration time.Duration) error {
	if duration <= 0 {
		return nil
	}

	timer := time.NewTimer(duration)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("context done: %w", ctx.Err())
	}
}

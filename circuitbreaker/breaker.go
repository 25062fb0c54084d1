package circuitbreaker

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrOpenCircuit is returned by Execute while the breaker is open and the
// open timeout has not yet elapsed. The wrapped operation is never invoked.
var ErrOpenCircuit = errors.New("circuit breaker is open")

// State represents the breaker state.
type State string

const (
	StateClosed   State = "closed"
	StateOpen     State = "open"
	StateHalfOpen State = "half-open"
	StateUnknown  State = "unknown"
)

// StateChangeFunc is invoked on every state transition. It runs on the
// goroutine that caused the transition while the breaker lock is held, so it
// must not call back into the breaker.
type StateChangeFunc func(name string, from State, to State)

// Counts is a snapshot of the breaker's bookkeeping.
type Counts struct {
	WindowFailures       int
	ConsecutiveSuccesses int
}

// Breaker is a failure-window circuit breaker.
//
// Closed -> Open when the count of failures inside the trailing FailureWindow
// reaches FailureThreshold. Open -> HalfOpen lazily, on the first Execute
// after OpenTimeout has elapsed since the last failure. HalfOpen -> Closed
// after SuccessThreshold consecutive successes; HalfOpen -> Open on any
// single failure.
//
// All state is guarded by a mutex so the breaker is safe for concurrent use.
// Under high concurrency it behaves as an approximate limiter: counts are of
// calls that happened to observe the window, not a linearizable total.
type Breaker struct {
	name   string
	config Config

	mu           sync.Mutex
	state        State
	successCount int
	failures     []time.Time
	lastFailure  time.Time

	now           func() time.Time
	onStateChange StateChangeFunc
}

// BreakerOption configures a Breaker.
type BreakerOption func(*Breaker)

// WithStateChangeFunc registers a transition callback.
func WithStateChangeFunc(fn StateChangeFunc) BreakerOption {
	return func(b *Breaker) {
		b.onStateChange = fn
	}
}

// withClock overrides the breaker's time source. Tests only.
func withClock(now func() time.Time) BreakerOption {
	return func(b *Breaker) {
		b.now = now
	}
}

// NewBreaker creates a closed breaker with the given configuration.
func NewBreaker(name string, config Config, opts ...BreakerOption) (*Breaker, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("circuit breaker %q: %w", name, err)
	}

	b := &Breaker{
		name:   name,
		config: config,
		state:  StateClosed,
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(b)
	}

	return b, nil
}

// Name returns the breaker's name.
func (b *Breaker) Name() string {
	return b.name
}

// Execute runs fn through the breaker. While open and before the open
// timeout elapses it returns ErrOpenCircuit without invoking fn. The
// original error from fn is returned unchanged; it is never swallowed.
func (b *Breaker) Execute(fn func() (any, error)) (any, error) {
	if err := b.beforeCall(); err != nil {
		return nil, err
	}

	result, err := fn()
	if err != nil {
		b.onFailure()
		return nil, err
	}

	b.onSuccess()

	return result, nil
}

// State returns the current state. It is a pure read: the lazy
// Open -> HalfOpen transition happens only on Execute.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.state
}

// Counts returns a snapshot of the current window and success counters.
func (b *Breaker) Counts() Counts {
	b.mu.Lock()
	defer b.mu.Unlock()

	return Counts{
		WindowFailures:       len(b.failures),
		ConsecutiveSuccesses: b.successCount,
	}
}

// Reset unconditionally returns the breaker to a pristine closed state,
// clearing the failure window and counters. Administrative escape hatch;
// the normal control flow never calls it.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	from := b.state
	b.state = StateClosed
	b.failures = nil
	b.successCount = 0
	b.lastFailure = time.Time{}

	if from != StateClosed {
		b.notifyLocked(from, StateClosed)
	}
}

// beforeCall rejects the call while open, or moves the breaker to half-open
// once the open timeout has elapsed.
func (b *Breaker) beforeCall() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.refreshLocked()

	if b.state == StateOpen {
		return fmt.Errorf("%q rejected call: %w", b.name, ErrOpenCircuit)
	}

	return nil
}

// refreshLocked applies the lazy Open -> HalfOpen transition. No background
// timer exists; the transition is evaluated on access.
func (b *Breaker) refreshLocked() {
	if b.state == StateOpen && b.now().Sub(b.lastFailure) >= b.config.OpenTimeout {
		b.successCount = 0
		b.setStateLocked(StateHalfOpen)
	}
}

func (b *Breaker) onSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.successCount++

	if b.state == StateHalfOpen && b.successCount >= b.config.SuccessThreshold {
		b.failures = nil
		b.setStateLocked(StateClosed)
	}
}

func (b *Breaker) onFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	b.lastFailure = now
	b.failures = append(b.failures, now)
	b.pruneLocked(now)

	if b.state == StateHalfOpen {
		b.successCount = 0
		b.setStateLocked(StateOpen)

		return
	}

	if len(b.failures) >= b.config.FailureThreshold {
		b.successCount = 0
		b.setStateLocked(StateOpen)
	}
}

// pruneLocked drops window entries older than FailureWindow. Pruning is lazy,
// running only on failure reports.
func (b *Breaker) pruneLocked(now time.Time) {
	cutoff := now.Add(-b.config.FailureWindow)

	idx := 0
	for idx < len(b.failures) && b.failures[idx].Before(cutoff) {
		idx++
	}

	if idx > 0 {
		b.failures = append(b.failures[:0], b.failures[idx:]...)
	}
}

func (b *Breaker) setStateLocked(to State) {
	from := b.state
	if from == to {
		return
	}

	b.state = to
	b.notifyLocked(from, to)
}

func (b *Breaker) notifyLocked(from, to State) {
	if b.onStateChange != nil {
		b.onStateChange(b.name, from, to)
	}
}

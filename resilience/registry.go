package resilience

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrSenderNotRegistered is returned when a sender is requested before
	// it has been registered. Accessing an unwired sender is a programming
	// error and must fail loudly instead of returning a default.
	ErrSenderNotRegistered = errors.New("resilience: sender not registered")
	// ErrNilSender is returned when registering a nil sender.
	ErrNilSender = errors.New("resilience: sender is nil")
	// ErrSenderAlreadyRegistered is returned on duplicate registration.
	ErrSenderAlreadyRegistered = errors.New("resilience: sender already registered")
)

// Registry is an explicit, caller-owned container of named senders. The
// application constructs one Registry during wiring and hands it to
// consumers; there is no hidden process-wide instance.
type Registry struct {
	mu      sync.RWMutex
	senders map[string]*Sender
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{senders: make(map[string]*Sender)}
}

// Register adds a sender under a name. Duplicate names are rejected so
// wiring mistakes surface at startup.
func (r *Registry) Register(name string, sender *Sender) error {
	if sender == nil {
		return fmt.Errorf("register %q: %w", name, ErrNilSender)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.senders[name]; exists {
		return fmt.Errorf("register %q: %w", name, ErrSenderAlreadyRegistered)
	}

	r.senders[name] = sender

	return nil
}

// Sender returns the sender registered under name, or
// ErrSenderNotRegistered if wiring never happened.
func (r *Registry) Sender(name string) (*Sender, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sender, exists := r.senders[name]
	if !exists {
		return nil, fmt.Errorf("lookup %q: %w", name, ErrSenderNotRegistered)
	}

	return sender, nil
}

// MustSender returns the sender registered under name, panicking if it was
// never registered. Intended for wiring code where a missing sender is
// unrecoverable.
func (r *Registry) MustSender(name string) *Sender {
	sender, err := r.Sender(name)
	if err != nil {
		panic(err.Error())
	}

	return sender
}

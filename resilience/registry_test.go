package resilience

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_AccessBeforeRegistrationFails(t *testing.T) {
	registry := NewRegistry()

	_, err := registry.Sender("ledger-rpc")
	assert.ErrorIs(t, err, ErrSenderNotRegistered)

	assert.Panics(t, func() {
		registry.MustSender("ledger-rpc")
	})
}

func TestRegistry_RegisterAndLookup(t *testing.T) {
	registry := NewRegistry()

	sender, err := NewSender("ledger-rpc")
	require.NoError(t, err)

	require.NoError(t, registry.Register("ledger-rpc", sender))

	found, err := registry.Sender("ledger-rpc")
	require.NoError(t, err)
	assert.Same(t, sender, found)

	assert.Same(t, sender, registry.MustSender("ledger-rpc"))
}

func TestRegistry_DuplicateRegistration(t *testing.T) {
	registry := NewRegistry()

	first, err := NewSender("ledger-rpc")
	require.NoError(t, err)

	second, err := NewSender("ledger-rpc")
	require.NoError(t, err)

	require.NoError(t, registry.Register("ledger-rpc", first))

	err = registry.Register("ledger-rpc", second)
	assert.ErrorIs(t, err, ErrSenderAlreadyRegistered)
}

func TestRegistry_NilSender(t *testing.T) {
	registry := NewRegistry()

	err := registry.Register("ledger-rpc", nil)
	assert.ErrorIs(t, err, ErrNilSender)
}

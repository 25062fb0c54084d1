// Package ledger is the client facade for the remote ledger service.
//
// Client wraps a Transport with the resilient sender: transaction submission
// runs under the critical retry policy, reads under the read-only policy.
// The package is transport-agnostic; HTTPTransport is the included
// JSON-over-HTTP implementation.
package ledger

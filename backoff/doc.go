// Package backoff provides exponential backoff and jitter primitives used by
// the retry executor.
package backoff

// Package errgroup manages a set of goroutines sharing a cancellation
// context, with panic recovery. Used by the ledger client for bounded batch
// fan-out.
package errgroup

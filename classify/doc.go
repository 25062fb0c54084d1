// Package classify maps arbitrary failures from the remote ledger transport
// into a stable error taxonomy with an explicit retryability flag.
//
// Classification prefers structured information (typed errors implementing
// KindCarrier or ErrorCoder, known sentinel codes, context and net errors)
// and falls back to case-insensitive substring heuristics only when the
// failure carries no structure. Every input maps to exactly one result.
package classify

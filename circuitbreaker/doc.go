// Package circuitbreaker provides a failure-window circuit breaker and
// service-level orchestration around it.
//
// Breaker is a three-state machine (closed, open, half-open) that fails fast
// once failures exceed a threshold within a trailing time window. Use
// NewManager to create and manage per-service breakers, then run calls
// through Manager.Execute so failures are tracked consistently across
// callers. Optional health-check integration can automatically reset
// breakers after downstream services recover.
package circuitbreaker

// Package resilience composes the circuit breaker around the retry executor.
//
// A Sender owns exactly one breaker. The breaker observes only the outcome
// of the entire retried call: a transient blip that gets retried and
// ultimately succeeds never touches the failure window, while a call that
// exhausts all retries counts as one breaker failure. This keeps network
// jitter under retry from prematurely tripping the breaker while still
// protecting against sustained outages.
//
// Registry is an explicit, caller-owned holder for named senders. There is
// no package-level global; construct a Registry, register senders, and pass
// it to consumers.
package resilience

// Package retry drives repeated invocation of an operation under a Policy,
// consulting the error classifier after each failure.
//
// Non-retryable failures propagate immediately. Retryable failures are
// retried with exponential backoff and jitter until the policy's attempt
// budget is exhausted, at which point an ExhaustedError carrying the last
// classification is returned.
package retry

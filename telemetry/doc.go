// Package telemetry provides a thread-safe factory for the SDK's
// OpenTelemetry instruments with lazy initialization.
//
// The factory defaults to the no-op meter, so instrumented code paths cost
// nothing unless a real meter provider is wired in.
package telemetry

// Package log defines the SDK logging contract and two reference
// implementations: GoLogger (standard library backend) and NoneLogger
// (no-op, intended for tests and as a safe default).
//
// Production services should use the zap package, which adapts
// go.uber.org/zap to this interface.
package log

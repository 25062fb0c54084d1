// Package zap adapts go.uber.org/zap to the SDK log.Logger interface.
//
// Use InitializeLogger for a production JSON logger configured from the
// LOG_LEVEL environment variable, or NewWithZap to wrap a custom zap logger.
package zap

package logging

import (
	"go.uber.org/zap"
)

// NewLogger builds the production logger used across the service
func NewLogger() *zap.Logger {
	l, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	return l
}

// WithCaller returns a logger annotated with the caller identity used for
// quota accounting: a user id for authenticated requests, a client id for
// anonymous ones.
func WithCaller(logger *zap.Logger, callerKey string) *zap.Logger {
	if callerKey == "" {
		return logger
	}
	return logger.With(zap.String("caller", callerKey))
}

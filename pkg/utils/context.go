package utils

import (
	"context"
	"errors"
	"time"
)

// DefaultTimeout is the standard timeout for store operations
const DefaultTimeout = 5 * time.Second

// WithTimeout creates context with default timeout
func WithTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, DefaultTimeout)
}

// IsContextError checks if error is from context cancellation
func IsContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

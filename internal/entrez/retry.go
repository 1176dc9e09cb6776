package entrez

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// FatalError marks a remote call that failed every attempt. The pipeline
// treats it as run-fatal; the CLI maps it to a non-zero exit.
type FatalError struct {
	Op       string
	Attempts int
	Err      error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("entrez %s failed after %d attempts: %v", e.Op, e.Attempts, e.Err)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

func IsFatal(err error) bool {
	var fe *FatalError
	return errors.As(err, &fe)
}

// withRetry invokes fn up to the configured attempt ceiling, immediately and
// without backoff, logging each failure with its attempt number. Error kinds
// are not distinguished: a timeout and a malformed response retry identically.
func (c *Client) withRetry(op string, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= c.retries; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		c.log.Warn("entrez query failed",
			zap.String("op", op),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", c.retries),
			zap.Error(lastErr),
		)
	}
	c.log.Error("too many entrez failures",
		zap.String("op", op),
		zap.Int("attempts", c.retries),
		zap.Error(lastErr),
	)
	return &FatalError{Op: op, Attempts: c.retries, Err: lastErr}
}

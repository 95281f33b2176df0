// Package retry provides bounded exponential backoff for transient cache
// and broker faults. Verification paths that must fail closed do not retry;
// the caller decides which errors are transient.
package retry

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// Default backoff parameters.
const (
	DefaultMaxAttempts    = 3
	DefaultInitialBackoff = 50 * time.Millisecond
	DefaultMaxBackoff     = 2 * time.Second
	defaultJitterFactor   = 0.25
)

// Config bounds the retry loop.
type Config struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int

	// InitialBackoff is the delay before the second attempt; each further
	// attempt doubles it, capped at MaxBackoff.
	InitialBackoff time.Duration

	// MaxBackoff caps the delay between attempts.
	MaxBackoff time.Duration
}

// DefaultConfig returns the default retry configuration.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:    DefaultMaxAttempts,
		InitialBackoff: DefaultInitialBackoff,
		MaxBackoff:     DefaultMaxBackoff,
	}
}

func (c Config) maxAttempts() int {
	if c.MaxAttempts <= 0 {
		return DefaultMaxAttempts
	}
	return c.MaxAttempts
}

func (c Config) initialBackoff() time.Duration {
	if c.InitialBackoff <= 0 {
		return DefaultInitialBackoff
	}
	return c.InitialBackoff
}

func (c Config) maxBackoff() time.Duration {
	if c.MaxBackoff <= 0 {
		return DefaultMaxBackoff
	}
	return c.MaxBackoff
}

// Do runs fn until it succeeds, the context is done, shouldRetry reports the
// error as permanent, or the attempt budget is exhausted. A nil shouldRetry
// retries every error.
func Do(ctx context.Context, cfg Config, shouldRetry func(error) bool, fn func() error) error {
	var lastErr error
	attempts := cfg.maxAttempts()

	for attempt := 0; attempt < attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if shouldRetry != nil && !shouldRetry(lastErr) {
			return lastErr
		}
		if attempt == attempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff(attempt, cfg.initialBackoff(), cfg.maxBackoff())):
		}
	}

	return lastErr
}

// backoff computes the delay for the given zero-based attempt with jitter.
func backoff(attempt int, initial, max time.Duration) time.Duration {
	d := float64(initial) * math.Pow(2, float64(attempt))
	d += d * defaultJitterFactor * rand.Float64()
	if d > float64(max) {
		d = float64(max)
	}
	return time.Duration(d)
}

package retry

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Config holds retry/backoff configuration
type Config struct {
	MaxRetries     int           // maximum number of retry attempts; < 0 means retry forever
	InitialBackoff time.Duration // initial backoff duration
	MaxBackoff     time.Duration // maximum backoff duration
	Multiplier     float64       // exponential backoff multiplier
}

// DefaultConfig returns sensible defaults for request retries
func DefaultConfig() Config {
	return Config{
		MaxRetries:     3,
		InitialBackoff: 1 * time.Second,
		MaxBackoff:     30 * time.Second,
		Multiplier:     2.0,
	}
}

// ReconnectConfig returns the policy used by long-lived connections
// (telemetry channel): unbounded attempts, capped backoff.
func ReconnectConfig() Config {
	return Config{
		MaxRetries:     -1,
		InitialBackoff: 1 * time.Second,
		MaxBackoff:     60 * time.Second,
		Multiplier:     2.0,
	}
}

// Do executes fn with exponential backoff retries
func Do(ctx context.Context, config Config, fn func() error) error {
	var lastErr error
	backoff := config.InitialBackoff

	for attempt := 0; config.MaxRetries < 0 || attempt <= config.MaxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return fmt.Errorf("retry cancelled: %w", ctx.Err())
		default:
		}

		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if config.MaxRetries >= 0 && attempt == config.MaxRetries {
			break
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("retry cancelled: %w", ctx.Err())
		case <-time.After(backoff):
		}

		backoff = time.Duration(float64(backoff) * config.Multiplier)
		if backoff > config.MaxBackoff {
			backoff = config.MaxBackoff
		}
	}

	return fmt.Errorf("max retries (%d) exceeded: %w", config.MaxRetries, lastErr)
}

// NextBackoff returns the backoff to sleep after a given consecutive
// failure count, for callers that drive their own reconnect loop.
func (c Config) NextBackoff(failures int) time.Duration {
	backoff := c.InitialBackoff
	for i := 0; i < failures; i++ {
		backoff = time.Duration(float64(backoff) * c.Multiplier)
		if backoff >= c.MaxBackoff {
			return c.MaxBackoff
		}
	}
	return backoff
}

// IsRetryable checks if an error is worth retrying
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	errStr := strings.ToLower(err.Error())
	retryable := []string{
		"connection refused",
		"connection reset",
		"timeout",
		"temporary failure",
		"503",
		"502",
		"504",
		"eof",
		"broken pipe",
	}
	for _, s := range retryable {
		if strings.Contains(errStr, s) {
			return true
		}
	}
	return false
}

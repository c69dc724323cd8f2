package embeddings

import (
	"context"
	"strings"
	"time"
)

// RetryPolicy controls how transient provider errors are retried.
// Backoff grows by half after each attempt and is capped at MaxBackoff.
type RetryPolicy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration

	// Retryable classifies errors. Nil means DefaultRetryable.
	Retryable func(error) bool
}

// ApplyDefaults fills zero fields with conservative values.
func (p *RetryPolicy) ApplyDefaults() {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 3
	}
	if p.InitialBackoff <= 0 {
		p.InitialBackoff = time.Second
	}
	if p.MaxBackoff <= 0 {
		p.MaxBackoff = 30 * time.Second
	}
	if p.Retryable == nil {
		p.Retryable = DefaultRetryable
	}
}

// Do runs fn up to MaxAttempts times, sleeping between attempts. It returns
// the first non-retryable error, or the last error once attempts are
// exhausted. Context cancellation aborts the wait.
func (p RetryPolicy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	p.ApplyDefaults()

	backoff := p.InitialBackoff
	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if !p.Retryable(lastErr) || attempt == p.MaxAttempts {
			return lastErr
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		backoff = backoff + backoff/2
		if backoff > p.MaxBackoff {
			backoff = p.MaxBackoff
		}
	}
	return lastErr
}

// DefaultRetryable treats throttling, timeouts and transient transport
// failures as retryable. Anything else (auth, validation, bad model id)
// fails fast.
func DefaultRetryable(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{
		"timeout",
		"timed out",
		"throttl",
		"rate limit",
		"too many requests",
		"connection reset",
		"connection refused",
		"internal server error",
		"service unavailable",
		"bad gateway",
		"status code: 5",
		"eof",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

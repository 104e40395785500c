// Package retry re-runs operations that failed with a retryable classified
// error, waiting between attempts according to a backoff policy.
package retry

import (
	"context"
	"time"

	"git.home.luguber.info/inful/docmanual/internal/config"
	derrors "git.home.luguber.info/inful/docmanual/internal/foundation/errors"
)

// Policy encapsulates retry/backoff settings for transient failures.
// It is immutable after construction.
type Policy struct {
	Backoff    config.RetryBackoff
	Initial    time.Duration // base delay
	Max        time.Duration // cap for growth
	MaxRetries int           // attempts after the first failure
}

// DefaultPolicy is linear, starting at 250ms, capped at 5s, with 3 retries.
func DefaultPolicy() Policy {
	return Policy{
		Backoff:    config.RetryBackoffLinear,
		Initial:    250 * time.Millisecond,
		Max:        5 * time.Second,
		MaxRetries: 3,
	}
}

// FromConfig builds a policy from configuration; zero values fall back to
// the defaults.
func FromConfig(c config.RetryConfig) Policy {
	p := DefaultPolicy()
	if c.MaxRetries > 0 {
		p.MaxRetries = c.MaxRetries
	}
	if c.Initial > 0 {
		p.Initial = c.Initial
	}
	if c.Max > 0 {
		p.Max = c.Max
	}
	if c.Backoff != "" {
		p.Backoff = config.NormalizeRetryBackoff(string(c.Backoff))
	}
	if p.Initial > p.Max {
		p.Initial = p.Max
	}
	return p
}

// Delay returns the wait before retry n (1-based).
func (p Policy) Delay(n int) time.Duration {
	if n <= 0 {
		return 0
	}
	var d time.Duration
	switch p.Backoff {
	case config.RetryBackoffFixed:
		return p.Initial
	case config.RetryBackoffExponential:
		if n > 30 {
			return p.Max
		}
		d = p.Initial << (n - 1)
	default:
		d = time.Duration(n) * p.Initial
	}
	if d > p.Max || d <= 0 {
		return p.Max
	}
	return d
}

// Retryable reports whether err is classified as worth another attempt.
func Retryable(err error) bool {
	ce, ok := derrors.AsClassified(err)
	return ok && ce.CanRetry()
}

// Do runs fn until it succeeds, fails with a non-retryable error, exhausts
// the policy or ctx is done. onRetry, when set, is called before each wait.
// The last error is returned.
func (p Policy) Do(ctx context.Context, fn func(context.Context) error, onRetry func(attempt int, delay time.Duration, err error)) error {
	err := fn(ctx)
	for attempt := 1; err != nil && attempt <= p.MaxRetries && Retryable(err); attempt++ {
		delay := p.Delay(attempt)
		if onRetry != nil {
			onRetry(attempt, delay, err)
		}
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}
		err = fn(ctx)
	}
	return err
}

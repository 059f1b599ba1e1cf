package strava

import (
	"context"
	"errors"
	"time"
)

// Outcome tags the result of one attempt for the retry loop.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeTransient
	OutcomePermanent
)

// Classify maps an attempt error to a retry outcome. 401/403/404 are
// permanent for the current token or resource; rate limits and other API
// failures (including timeouts) are transient.
func Classify(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, ErrAuthExpired), errors.Is(err, ErrForbidden), errors.Is(err, ErrNotFound):
		return OutcomePermanent
	case errors.Is(err, ErrRateLimited):
		return OutcomeTransient
	default:
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return OutcomeTransient
		}
		return OutcomePermanent
	}
}

// RetryPolicy is an explicit backoff schedule consumed by Do. The delay
// starts at InitialDelay and multiplies by Factor per transient failure. A
// rate-limited attempt escalates to the fixed RateLimitCooldown instead of
// the exponential delay before backoff resumes.
type RetryPolicy struct {
	MaxAttempts       int
	InitialDelay      time.Duration
	Factor            float64
	RateLimitCooldown time.Duration
}

// DefaultRetryPolicy matches the Strava request budget: three attempts,
// one-second initial delay doubling per attempt, 60s cooldown on 429.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:       3,
		InitialDelay:      time.Second,
		Factor:            2.0,
		RateLimitCooldown: 60 * time.Second,
	}
}

// Do runs op under the policy. Permanent failures and context cancellation
// return immediately; transient failures sleep and retry until the attempt
// budget is spent, after which the last error is returned.
func (p RetryPolicy) Do(ctx context.Context, op func() error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	delay := p.InitialDelay
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := op()
		switch Classify(err) {
		case OutcomeSuccess:
			return nil
		case OutcomePermanent:
			return err
		}
		lastErr = err

		if attempt == attempts {
			break
		}

		wait := delay
		if errors.Is(err, ErrRateLimited) {
			wait = p.RateLimitCooldown
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		delay = time.Duration(float64(delay) * p.Factor)
	}

	return lastErr
}

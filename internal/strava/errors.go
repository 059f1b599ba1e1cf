package strava

import (
	"errors"
	"fmt"
)

// Errors returned by the client, mapped from remote status codes. Callers
// decide retry behaviour from these: ErrAuthExpired gets exactly one
// refresh-and-retry, ErrRateLimited goes through the backoff cooldown,
// ErrNotFound and ErrForbidden are permanent for the current token/resource.
var (
	ErrAuthExpired = errors.New("strava: access token expired")
	ErrForbidden   = errors.New("strava: access forbidden")
	ErrNotFound    = errors.New("strava: resource not found")
	ErrRateLimited = errors.New("strava: rate limited")
)

// APIError carries the status and body of any other non-2xx response, and
// wraps timeouts on the 30s per-request budget. It is transient for retry
// purposes.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("strava: request failed: %s", e.Body)
	}
	return fmt.Sprintf("strava: unexpected status %d: %s", e.StatusCode, e.Body)
}

// statusError maps a non-2xx response to the error taxonomy.
func statusError(statusCode int, body string) error {
	switch statusCode {
	case 401:
		return ErrAuthExpired
	case 403:
		return ErrForbidden
	case 404:
		return ErrNotFound
	case 429:
		return ErrRateLimited
	default:
		return &APIError{StatusCode: statusCode, Body: body}
	}
}

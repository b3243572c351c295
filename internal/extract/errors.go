package extract

import (
	"fmt"
	"time"
)

// RateLimitError reports that a provider returned HTTP 429. RetryAfter is how
// long the provider asked us to hold off; the engine stretches its backoff to
// honor it, clamped to the configured cap.
type RateLimitError struct {
	Provider   string
	RetryAfter time.Duration
	Err        error
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s rate limited, retry after %s: %v", e.Provider, e.RetryAfter, e.Err)
}

func (e *RateLimitError) Unwrap() error { return e.Err }

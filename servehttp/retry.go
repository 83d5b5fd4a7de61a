package servehttp

import (
	"context"
	"time"
	"workmill/domain"
)

// RetryPolicy bounds the contention retry loop at the API boundary.
// Lifecycle handlers attempt exactly one versioned write and never retry
// internally, so this loop is the only place a conflicted request is re-run.
type RetryPolicy struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

var DefaultRetryPolicy = RetryPolicy{
	MaxAttempts:  3,
	InitialDelay: 20 * time.Millisecond,
	MaxDelay:     200 * time.Millisecond,
}

// RetryOnContention re-runs fn with exponential backoff while it keeps
// failing on an error the retryable predicate accepts. The last error is
// returned unchanged once the attempts are exhausted.
func RetryOnContention(ctx context.Context, policy RetryPolicy, retryable func(error) bool,
	fn func() (*domain.WorkItem, error)) (*domain.WorkItem, error) {

	delay := policy.InitialDelay
	var item *domain.WorkItem
	var err error
	for attempt := 0; attempt < policy.MaxAttempts; attempt++ {
		item, err = fn()
		if err == nil || !retryable(err) || attempt == policy.MaxAttempts-1 {
			return item, err
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
		if delay > policy.MaxDelay {
			delay = policy.MaxDelay
		}
	}
	return item, err
}

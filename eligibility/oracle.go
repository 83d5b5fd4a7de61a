package eligibility

import (
	"context"
)

// Oracle answers whether an actor may act on a task. Implementations live in
// the external role/resource collaborator and may block on network or database
// lookups; handlers treat the call as a suspension point and surface failures
// as retryable eligibility errors.
type Oracle interface {
	IsEligible(ctx context.Context, actor string, taskID string) (bool, error)
}

// OracleFunc adapts a plain function to the Oracle contract.
type OracleFunc func(ctx context.Context, actor string, taskID string) (bool, error)

func (f OracleFunc) IsEligible(ctx context.Context, actor string, taskID string) (bool, error) {
	return f(ctx, actor, taskID)
}

// AllowAll treats every actor as eligible. Used when resourcing rules are
// managed entirely through offers, allocations and privileges.
func AllowAll() Oracle {
	return OracleFunc(func(ctx context.Context, actor string, taskID string) (bool, error) {
		return true, nil
	})
}

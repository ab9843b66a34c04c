package domain

import "context"

// ConnectionStore persists each user's connection set. Implementations
// must round-trip date fields losslessly (RFC3339 for serialized forms).
type ConnectionStore interface {
	SaveConnections(ctx context.Context, userID string, connections []Connection) error
	LoadConnections(ctx context.Context, userID string) ([]Connection, error)
}

// MonetizationStore persists pricing, executions, earnings, quotas and
// payouts. The manager logic is storage-agnostic and only relies on these
// get/put/list semantics.
type MonetizationStore interface {
	PutPricing(ctx context.Context, pricing WorkflowPricing) error
	GetPricing(ctx context.Context, workflowID string) (WorkflowPricing, bool, error)

	PutExecution(ctx context.Context, execution WorkflowExecution) error
	GetExecution(ctx context.Context, executionID string) (WorkflowExecution, bool, error)
	ListExecutionsByWorkflow(ctx context.Context, workflowID string) ([]WorkflowExecution, error)

	PutEarnings(ctx context.Context, earnings CreatorEarnings) error
	GetEarnings(ctx context.Context, creatorID, workflowID string) (CreatorEarnings, bool, error)
	ListEarningsByCreator(ctx context.Context, creatorID string) ([]CreatorEarnings, error)

	PutQuota(ctx context.Context, quota UsageQuota) error
	GetQuota(ctx context.Context, userID, workflowID string) (UsageQuota, bool, error)

	PutPayout(ctx context.Context, payout Payout) error
	GetPayout(ctx context.Context, payoutID string) (Payout, bool, error)
	ListPayoutsByStatus(ctx context.Context, status PayoutStatus) ([]Payout, error)
}

package domain

import "context"

// MonetizationManager computes and records the economics of workflow
// executions: pricing configuration, free-tier gating, payment, revenue
// split between platform and creator, and creator payout aggregation.
type MonetizationManager interface {
	ConfigureWorkflowPricing(ctx context.Context, p ConfigurePricingParams) (WorkflowPricing, error)
	GetWorkflowPricing(ctx context.Context, workflowID string) (WorkflowPricing, error)

	// CalculateExecutionCost is a pure function of the stored pricing and
	// unitsProcessed. Unconfigured or free workflows cost zero.
	CalculateExecutionCost(ctx context.Context, workflowID string, unitsProcessed int) (CostBreakdown, error)

	ExecuteWorkflow(ctx context.Context, p ExecuteWorkflowParams) (WorkflowExecution, error)

	// FinalizeExecution moves a non-terminal execution to its terminal
	// status once the backend run resolves.
	FinalizeExecution(ctx context.Context, executionID string, status ExecutionStatus) (WorkflowExecution, error)

	GetCreatorEarnings(ctx context.Context, creatorID string) ([]CreatorEarnings, error)
	GetCreatorTotalEarnings(ctx context.Context, creatorID string) (CreatorTotals, error)
	ProcessCreatorPayout(ctx context.Context, p ProcessPayoutParams) (Payout, error)
	GetPayout(ctx context.Context, payoutID string) (Payout, error)

	// SettlePayout drives a pending payout to completed, zeroing each
	// contributing earnings record's pending amount into its paid-out
	// total. Idempotent: settling a terminal payout is a no-op.
	SettlePayout(ctx context.Context, payoutID string) (Payout, error)

	// SettlePendingPayouts re-drives every non-terminal payout; meant for
	// supervisor use at startup.
	SettlePendingPayouts(ctx context.Context) error

	GetWorkflowAnalytics(ctx context.Context, workflowID string) (WorkflowAnalytics, error)
}

// ConfigurePricingParams carries the creator-provided fields; zero values
// fall back to platform defaults.
type ConfigurePricingParams struct {
	WorkflowID        string       `json:"workflow_id"`
	CreatorID         string       `json:"creator_id"`
	Model             PricingModel `json:"model,omitempty"`
	BasePrice         float64      `json:"base_price,omitempty"`
	PerUnitPrice      float64      `json:"per_unit_price,omitempty"`
	UnitLabel         string       `json:"unit_label,omitempty"`
	SubscriptionPrice float64      `json:"subscription_price,omitempty"`
	OneTimePrice      float64      `json:"one_time_price,omitempty"`
	FreeUsageLimit    int          `json:"free_usage_limit,omitempty"`
	FreeTierActive    *bool        `json:"free_tier_active,omitempty"`
	PlatformShare     float64      `json:"platform_share,omitempty"`
	CreatorShare      float64      `json:"creator_share,omitempty"`
}

type ExecuteWorkflowParams struct {
	WorkflowID     string         `json:"workflow_id"`
	UserID         string         `json:"user_id"`
	InputData      map[string]any `json:"input_data,omitempty"`
	UnitsProcessed int            `json:"units_processed,omitempty"`
}

type ProcessPayoutParams struct {
	CreatorID     string `json:"creator_id"`
	PaymentMethod string `json:"payment_method"`
}

// CreatorTotals sums a creator's earnings across all workflows.
type CreatorTotals struct {
	CreatorID      string  `json:"creator_id"`
	TotalRevenue   float64 `json:"total_revenue"`
	PendingPayout  float64 `json:"pending_payout"`
	PaidOut        float64 `json:"paid_out"`
	ExecutionCount int     `json:"execution_count"`
	WorkflowCount  int     `json:"workflow_count"`
}

// PaymentProcessor charges a user for one execution. Implementations must
// honor the idempotency key so a retried charge is not applied twice.
type PaymentProcessor interface {
	Charge(ctx context.Context, p ChargeParams) (ChargeResult, error)
}

type ChargeParams struct {
	UserID         string
	Amount         float64
	Currency       string
	Description    string
	IdempotencyKey string
}

// ChargeResult reports the outcome of a charge. A declined charge is a
// result, not an error: errors are reserved for transport failures.
type ChargeResult struct {
	PaymentID string
	Succeeded bool
}

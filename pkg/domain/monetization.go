package domain

import "time"

type PricingModel string

const (
	PricingModelFree         PricingModel = "free"
	PricingModelPayPerUse    PricingModel = "pay_per_use"
	PricingModelSubscription PricingModel = "subscription"
	PricingModelOneTime      PricingModel = "one_time"
)

// WorkflowPricing is the creator-configured economics of one workflow.
type WorkflowPricing struct {
	WorkflowID        string       `json:"workflow_id" bson:"workflow_id"`
	CreatorID         string       `json:"creator_id" bson:"creator_id"`
	Model             PricingModel `json:"model" bson:"model"`
	BasePrice         float64      `json:"base_price" bson:"base_price"`
	PerUnitPrice      float64      `json:"per_unit_price" bson:"per_unit_price"`
	UnitLabel         string       `json:"unit_label,omitempty" bson:"unit_label,omitempty"`
	SubscriptionPrice float64      `json:"subscription_price,omitempty" bson:"subscription_price,omitempty"`
	OneTimePrice      float64      `json:"one_time_price,omitempty" bson:"one_time_price,omitempty"`
	FreeUsageLimit    int          `json:"free_usage_limit" bson:"free_usage_limit"`
	FreeTierActive    bool         `json:"free_tier_active" bson:"free_tier_active"`
	PlatformShare     float64      `json:"platform_share" bson:"platform_share"`
	CreatorShare      float64      `json:"creator_share" bson:"creator_share"`
	UpdatedAt         time.Time    `json:"updated_at" bson:"updated_at"`
}

type ExecutionStatus string

const (
	ExecutionStatusPending   ExecutionStatus = "pending"
	ExecutionStatusRunning   ExecutionStatus = "running"
	ExecutionStatusCompleted ExecutionStatus = "completed"
	ExecutionStatusFailed    ExecutionStatus = "failed"
)

// IsTerminal reports whether the status admits no further transitions.
func (s ExecutionStatus) IsTerminal() bool {
	return s == ExecutionStatusCompleted || s == ExecutionStatusFailed
}

// CostBreakdown is the computed price of one execution.
type CostBreakdown struct {
	BaseCost  float64 `json:"base_cost" bson:"base_cost"`
	UnitCost  float64 `json:"unit_cost" bson:"unit_cost"`
	TotalCost float64 `json:"total_cost" bson:"total_cost"`
}

// WorkflowExecution records one run attempt and its economics. A failed
// payment leaves the record stored with Paid=false; it is never retried
// automatically.
type WorkflowExecution struct {
	ID             string               `json:"id" bson:"id"`
	WorkflowID     string               `json:"workflow_id" bson:"workflow_id"`
	UserID         string               `json:"user_id" bson:"user_id"`
	Status         ExecutionStatus      `json:"status" bson:"status"`
	Cost           CostBreakdown        `json:"cost" bson:"cost"`
	Currency       string               `json:"currency" bson:"currency"`
	UnitsProcessed int                  `json:"units_processed" bson:"units_processed"`
	PaymentID      string               `json:"payment_id,omitempty" bson:"payment_id,omitempty"`
	Paid           bool                 `json:"paid" bson:"paid"`
	Revenue        *RevenueDistribution `json:"revenue,omitempty" bson:"revenue,omitempty"`
	CreatedAt      time.Time            `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at" bson:"updated_at"`
}

// RevenueDistribution is the split of one paid execution's revenue.
// Computed once, never mutated.
type RevenueDistribution struct {
	TotalRevenue    float64   `json:"total_revenue" bson:"total_revenue"`
	ProcessingFees  float64   `json:"processing_fees" bson:"processing_fees"`
	NetRevenue      float64   `json:"net_revenue" bson:"net_revenue"`
	PlatformRevenue float64   `json:"platform_revenue" bson:"platform_revenue"`
	CreatorRevenue  float64   `json:"creator_revenue" bson:"creator_revenue"`
	DistributedAt   time.Time `json:"distributed_at" bson:"distributed_at"`
}

// CreatorEarnings accumulates one creator's earnings for one workflow.
type CreatorEarnings struct {
	CreatorID      string    `json:"creator_id" bson:"creator_id"`
	WorkflowID     string    `json:"workflow_id" bson:"workflow_id"`
	TotalRevenue   float64   `json:"total_revenue" bson:"total_revenue"`
	ExecutionCount int       `json:"execution_count" bson:"execution_count"`
	UniqueUsers    int       `json:"unique_users" bson:"unique_users"`
	ThisMonth      float64   `json:"this_month" bson:"this_month"`
	LastMonth      float64   `json:"last_month" bson:"last_month"`
	ThisYear       float64   `json:"this_year" bson:"this_year"`
	PendingPayout  float64   `json:"pending_payout" bson:"pending_payout"`
	PaidOut        float64   `json:"paid_out" bson:"paid_out"`
	NextPayoutAt   time.Time `json:"next_payout_at" bson:"next_payout_at"`
	UpdatedAt      time.Time `json:"updated_at" bson:"updated_at"`

	// userIDs backs the unique-user count; not serialized to clients.
	UserIDs map[string]struct{} `json:"-" bson:"user_ids,omitempty"`
}

// AverageRevenue is TotalRevenue over ExecutionCount.
func (e CreatorEarnings) AverageRevenue() float64 {
	if e.ExecutionCount == 0 {
		return 0
	}
	return RoundCredits(e.TotalRevenue / float64(e.ExecutionCount))
}

// UsageQuota tracks one user's allowance on one workflow over a rolling
// window. Created lazily on first execution attempt.
type UsageQuota struct {
	UserID         string    `json:"user_id" bson:"user_id"`
	WorkflowID     string    `json:"workflow_id" bson:"workflow_id"`
	CurrentUsage   int       `json:"current_usage" bson:"current_usage"`
	MaxUsage       int       `json:"max_usage" bson:"max_usage"`
	OverageCount   int       `json:"overage_count" bson:"overage_count"`
	SubscriptionID string    `json:"subscription_id,omitempty" bson:"subscription_id,omitempty"`
	ResetsAt       time.Time `json:"resets_at" bson:"resets_at"`
	CreatedAt      time.Time `json:"created_at" bson:"created_at"`
}

type PayoutStatus string

const (
	PayoutStatusPending    PayoutStatus = "pending"
	PayoutStatusProcessing PayoutStatus = "processing"
	PayoutStatusCompleted  PayoutStatus = "completed"
	PayoutStatusFailed     PayoutStatus = "failed"
)

// IsTerminal reports whether the payout admits no further transitions.
func (s PayoutStatus) IsTerminal() bool {
	return s == PayoutStatusCompleted || s == PayoutStatusFailed
}

// Payout is one aggregated transfer of a creator's pending earnings.
type Payout struct {
	ID            string               `json:"id" bson:"id"`
	CreatorID     string               `json:"creator_id" bson:"creator_id"`
	Status        PayoutStatus         `json:"status" bson:"status"`
	GrossAmount   float64              `json:"gross_amount" bson:"gross_amount"`
	FeeAmount     float64              `json:"fee_amount" bson:"fee_amount"`
	NetAmount     float64              `json:"net_amount" bson:"net_amount"`
	Currency      string               `json:"currency" bson:"currency"`
	PaymentMethod string               `json:"payment_method" bson:"payment_method"`
	Contributions []PayoutContribution `json:"contributions,omitempty" bson:"contributions,omitempty"`
	ExecutionIDs  []string             `json:"execution_ids,omitempty" bson:"execution_ids,omitempty"`
	RetryCount    int                  `json:"retry_count" bson:"retry_count"`
	RequestedAt   time.Time            `json:"requested_at" bson:"requested_at"`
	SettledAt     *time.Time           `json:"settled_at,omitempty" bson:"settled_at,omitempty"`
}

// PayoutContribution pins the amount one workflow's earnings contributed
// at request time, so settlement only moves what was requested even if new
// earnings arrive before the payout settles.
type PayoutContribution struct {
	WorkflowID string  `json:"workflow_id" bson:"workflow_id"`
	Amount     float64 `json:"amount" bson:"amount"`
}

// WorkflowAnalytics aggregates the paid executions of one workflow.
type WorkflowAnalytics struct {
	WorkflowID     string        `json:"workflow_id"`
	TotalRevenue   float64       `json:"total_revenue"`
	ExecutionCount int           `json:"execution_count"`
	UniqueUsers    int           `json:"unique_users"`
	AverageRevenue float64       `json:"average_revenue"`
	TopUsers       []UserRevenue `json:"top_users"`
}

// UserRevenue ranks one user's spend on a workflow.
type UserRevenue struct {
	UserID  string  `json:"user_id"`
	Revenue float64 `json:"revenue"`
}

package managers

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/frontand-tech/frontand/pkg/domain"

	"github.com/google/uuid"
	"github.com/rs/xid"
	"github.com/rs/zerolog/log"
)

// MonetizationConfig carries the platform-wide economic parameters.
type MonetizationConfig struct {
	Currency              string
	ProcessingFeeRate     float64
	FixedProcessingFee    float64
	DefaultPlatformShare  float64
	DefaultCreatorShare   float64
	DefaultFreeUsageLimit int
	QuotaResetWindow      time.Duration
	MinimumPayout         float64
	SettlementDelay       time.Duration
}

// DefaultMonetizationConfig mirrors the platform defaults: 2.9% + $0.30
// processing fees, a 50/50 revenue split, 100 free executions per 30 days
// and a $25 payout floor.
func DefaultMonetizationConfig() MonetizationConfig {
	return MonetizationConfig{
		Currency:              "usd",
		ProcessingFeeRate:     0.029,
		FixedProcessingFee:    0.30,
		DefaultPlatformShare:  0.5,
		DefaultCreatorShare:   0.5,
		DefaultFreeUsageLimit: 100,
		QuotaResetWindow:      30 * 24 * time.Hour,
		MinimumPayout:         25,
		SettlementDelay:       3 * time.Second,
	}
}

type MonetizationManagerDependencies struct {
	Store    domain.MonetizationStore
	Payments domain.PaymentProcessor
	Config   MonetizationConfig

	// Now overrides the clock; nil means time.Now.
	Now func() time.Time
}

type monetizationManager struct {
	store    domain.MonetizationStore
	payments domain.PaymentProcessor
	config   MonetizationConfig
	now      func() time.Time

	// keyLocks serializes quota mutation per (user, workflow) so
	// interleaved executions cannot race increments.
	keyLocksMu sync.Mutex
	keyLocks   map[string]*sync.Mutex

	payoutMu sync.Mutex
}

func NewMonetizationManager(deps MonetizationManagerDependencies) domain.MonetizationManager {
	config := deps.Config
	if config.Currency == "" {
		config = DefaultMonetizationConfig()
	}

	now := deps.Now
	if now == nil {
		now = time.Now
	}

	return &monetizationManager{
		store:    deps.Store,
		payments: deps.Payments,
		config:   config,
		now:      now,
		keyLocks: make(map[string]*sync.Mutex),
	}
}

func (m *monetizationManager) ConfigureWorkflowPricing(ctx context.Context, p domain.ConfigurePricingParams) (domain.WorkflowPricing, error) {
	if p.WorkflowID == "" || p.CreatorID == "" {
		return domain.WorkflowPricing{}, fmt.Errorf("workflow id and creator id are required")
	}

	pricing := domain.WorkflowPricing{
		WorkflowID:        p.WorkflowID,
		CreatorID:         p.CreatorID,
		Model:             p.Model,
		BasePrice:         domain.RoundCredits(p.BasePrice),
		PerUnitPrice:      domain.RoundCredits(p.PerUnitPrice),
		UnitLabel:         p.UnitLabel,
		SubscriptionPrice: domain.RoundCredits(p.SubscriptionPrice),
		OneTimePrice:      domain.RoundCredits(p.OneTimePrice),
		FreeUsageLimit:    p.FreeUsageLimit,
		FreeTierActive:    true,
		PlatformShare:     p.PlatformShare,
		CreatorShare:      p.CreatorShare,
		UpdatedAt:         m.now(),
	}

	if pricing.Model == "" {
		pricing.Model = domain.PricingModelFree
	}

	if pricing.FreeUsageLimit == 0 {
		pricing.FreeUsageLimit = m.config.DefaultFreeUsageLimit
	}

	if p.FreeTierActive != nil {
		pricing.FreeTierActive = *p.FreeTierActive
	}

	switch {
	case pricing.PlatformShare == 0 && pricing.CreatorShare == 0:
		pricing.PlatformShare = m.config.DefaultPlatformShare
		pricing.CreatorShare = m.config.DefaultCreatorShare
	case pricing.PlatformShare == 0:
		pricing.PlatformShare = 1 - pricing.CreatorShare
	case pricing.CreatorShare == 0:
		pricing.CreatorShare = 1 - pricing.PlatformShare
	}

	if pricing.PlatformShare+pricing.CreatorShare > 1+1e-9 {
		return domain.WorkflowPricing{}, fmt.Errorf("platform and creator shares must sum to at most 1")
	}

	if err := m.store.PutPricing(ctx, pricing); err != nil {
		return domain.WorkflowPricing{}, fmt.Errorf("failed to store pricing: %w", err)
	}

	return pricing, nil
}

func (m *monetizationManager) GetWorkflowPricing(ctx context.Context, workflowID string) (domain.WorkflowPricing, error) {
	pricing, ok, err := m.store.GetPricing(ctx, workflowID)
	if err != nil {
		return domain.WorkflowPricing{}, fmt.Errorf("failed to load pricing: %w", err)
	}

	if !ok {
		return domain.WorkflowPricing{}, fmt.Errorf("workflow %q: %w", workflowID, domain.ErrPricingNotConfigured)
	}

	return pricing, nil
}

func (m *monetizationManager) CalculateExecutionCost(ctx context.Context, workflowID string, unitsProcessed int) (domain.CostBreakdown, error) {
	pricing, ok, err := m.store.GetPricing(ctx, workflowID)
	if err != nil {
		return domain.CostBreakdown{}, fmt.Errorf("failed to load pricing: %w", err)
	}

	if !ok || pricing.Model == domain.PricingModelFree {
		return domain.CostBreakdown{}, nil
	}

	return computeCost(pricing, unitsProcessed), nil
}

func computeCost(pricing domain.WorkflowPricing, unitsProcessed int) domain.CostBreakdown {
	baseCost := domain.RoundCredits(pricing.BasePrice)
	unitCost := domain.RoundCredits(pricing.PerUnitPrice * float64(unitsProcessed))

	return domain.CostBreakdown{
		BaseCost:  baseCost,
		UnitCost:  unitCost,
		TotalCost: domain.RoundCredits(baseCost + unitCost),
	}
}

func (m *monetizationManager) ExecuteWorkflow(ctx context.Context, p domain.ExecuteWorkflowParams) (domain.WorkflowExecution, error) {
	pricing, ok, err := m.store.GetPricing(ctx, p.WorkflowID)
	if err != nil {
		return domain.WorkflowExecution{}, fmt.Errorf("failed to load pricing: %w", err)
	}

	if !ok {
		return domain.WorkflowExecution{}, fmt.Errorf("workflow %q: %w", p.WorkflowID, domain.ErrPricingNotConfigured)
	}

	units := p.UnitsProcessed
	if units <= 0 {
		units = 1
	}

	unlock := m.lockKey(p.UserID + "|" + p.WorkflowID)
	defer unlock()

	quota, err := m.loadOrCreateQuota(ctx, p.UserID, p.WorkflowID, pricing)
	if err != nil {
		return domain.WorkflowExecution{}, err
	}

	if quota.CurrentUsage >= quota.MaxUsage && quota.SubscriptionID == "" {
		return domain.WorkflowExecution{}, fmt.Errorf("workflow %q for user %q: %w", p.WorkflowID, p.UserID, domain.ErrQuotaExceeded)
	}

	var cost domain.CostBreakdown
	if pricing.Model != domain.PricingModelFree {
		cost = computeCost(pricing, units)
	}

	now := m.now()
	execution := domain.WorkflowExecution{
		ID:             xid.New().String(),
		WorkflowID:     p.WorkflowID,
		UserID:         p.UserID,
		Status:         domain.ExecutionStatusPending,
		Cost:           cost,
		Currency:       m.config.Currency,
		UnitsProcessed: units,
		Paid:           cost.TotalCost == 0,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if cost.TotalCost > 0 {
		result, err := m.payments.Charge(ctx, domain.ChargeParams{
			UserID:         p.UserID,
			Amount:         cost.TotalCost,
			Currency:       m.config.Currency,
			Description:    fmt.Sprintf("Workflow execution %s", p.WorkflowID),
			IdempotencyKey: uuid.NewString(),
		})
		if err != nil {
			// Payment failure is recorded, not thrown, so callers can
			// inspect the execution and decide to retry.
			log.Error().Err(err).Msgf("Payment failed for workflow %s", p.WorkflowID)
		} else {
			execution.PaymentID = result.PaymentID
			execution.Paid = result.Succeeded
		}
	}

	if execution.Paid {
		if err := m.consumeQuota(ctx, quota); err != nil {
			return domain.WorkflowExecution{}, err
		}

		if cost.TotalCost > 0 {
			revenue := m.distributeRevenue(cost.TotalCost, pricing, now)
			execution.Revenue = &revenue

			if err := m.recordEarnings(ctx, pricing, p.UserID, revenue); err != nil {
				return domain.WorkflowExecution{}, err
			}
		}
	}

	if err := m.store.PutExecution(ctx, execution); err != nil {
		return domain.WorkflowExecution{}, fmt.Errorf("failed to store execution: %w", err)
	}

	return execution, nil
}

func (m *monetizationManager) FinalizeExecution(ctx context.Context, executionID string, status domain.ExecutionStatus) (domain.WorkflowExecution, error) {
	execution, ok, err := m.store.GetExecution(ctx, executionID)
	if err != nil {
		return domain.WorkflowExecution{}, fmt.Errorf("failed to load execution: %w", err)
	}

	if !ok {
		return domain.WorkflowExecution{}, fmt.Errorf("execution %q not found", executionID)
	}

	// Terminal executions are immutable.
	if execution.Status.IsTerminal() {
		return execution, nil
	}

	execution.Status = status
	execution.UpdatedAt = m.now()

	if err := m.store.PutExecution(ctx, execution); err != nil {
		return domain.WorkflowExecution{}, fmt.Errorf("failed to store execution: %w", err)
	}

	return execution, nil
}

func (m *monetizationManager) loadOrCreateQuota(ctx context.Context, userID, workflowID string, pricing domain.WorkflowPricing) (domain.UsageQuota, error) {
	quota, ok, err := m.store.GetQuota(ctx, userID, workflowID)
	if err != nil {
		return domain.UsageQuota{}, fmt.Errorf("failed to load quota: %w", err)
	}

	now := m.now()

	if !ok {
		maxUsage := pricing.FreeUsageLimit
		if maxUsage == 0 {
			maxUsage = m.config.DefaultFreeUsageLimit
		}

		quota = domain.UsageQuota{
			UserID:     userID,
			WorkflowID: workflowID,
			MaxUsage:   maxUsage,
			ResetsAt:   now.Add(m.config.QuotaResetWindow),
			CreatedAt:  now,
		}

		if err := m.store.PutQuota(ctx, quota); err != nil {
			return domain.UsageQuota{}, fmt.Errorf("failed to store quota: %w", err)
		}

		return quota, nil
	}

	// An expired window starts fresh lazily; no external sweeper.
	if now.After(quota.ResetsAt) {
		quota.CurrentUsage = 0
		quota.OverageCount = 0
		quota.ResetsAt = now.Add(m.config.QuotaResetWindow)

		if err := m.store.PutQuota(ctx, quota); err != nil {
			return domain.UsageQuota{}, fmt.Errorf("failed to store quota: %w", err)
		}
	}

	return quota, nil
}

func (m *monetizationManager) consumeQuota(ctx context.Context, quota domain.UsageQuota) error {
	if quota.CurrentUsage < quota.MaxUsage {
		quota.CurrentUsage++
	} else {
		quota.OverageCount++
	}

	if err := m.store.PutQuota(ctx, quota); err != nil {
		return fmt.Errorf("failed to store quota: %w", err)
	}

	return nil
}

func (m *monetizationManager) distributeRevenue(totalRevenue float64, pricing domain.WorkflowPricing, now time.Time) domain.RevenueDistribution {
	processingFees := domain.RoundCredits(totalRevenue*m.config.ProcessingFeeRate + m.config.FixedProcessingFee)
	netRevenue := domain.RoundCredits(totalRevenue - processingFees)

	return domain.RevenueDistribution{
		TotalRevenue:    domain.RoundCredits(totalRevenue),
		ProcessingFees:  processingFees,
		NetRevenue:      netRevenue,
		PlatformRevenue: domain.RoundCredits(netRevenue * pricing.PlatformShare),
		CreatorRevenue:  domain.RoundCredits(netRevenue * pricing.CreatorShare),
		DistributedAt:   now,
	}
}

func (m *monetizationManager) recordEarnings(ctx context.Context, pricing domain.WorkflowPricing, userID string, revenue domain.RevenueDistribution) error {
	earnings, ok, err := m.store.GetEarnings(ctx, pricing.CreatorID, pricing.WorkflowID)
	if err != nil {
		return fmt.Errorf("failed to load earnings: %w", err)
	}

	if !ok {
		earnings = domain.CreatorEarnings{
			CreatorID:  pricing.CreatorID,
			WorkflowID: pricing.WorkflowID,
			UserIDs:    make(map[string]struct{}),
		}
	}

	if earnings.UserIDs == nil {
		earnings.UserIDs = make(map[string]struct{})
	}

	now := revenue.DistributedAt

	earnings.TotalRevenue = domain.RoundCredits(earnings.TotalRevenue + revenue.CreatorRevenue)
	earnings.PendingPayout = domain.RoundCredits(earnings.PendingPayout + revenue.CreatorRevenue)
	earnings.ExecutionCount++

	if _, seen := earnings.UserIDs[userID]; !seen {
		earnings.UserIDs[userID] = struct{}{}
		earnings.UniqueUsers++
	}

	// Roll the month/year buckets forward when the clock crosses a boundary
	// since the last distribution.
	if !earnings.UpdatedAt.IsZero() {
		if earnings.UpdatedAt.Month() != now.Month() || earnings.UpdatedAt.Year() != now.Year() {
			earnings.LastMonth = earnings.ThisMonth
			earnings.ThisMonth = 0
		}
		if earnings.UpdatedAt.Year() != now.Year() {
			earnings.ThisYear = 0
		}
	}

	earnings.ThisMonth = domain.RoundCredits(earnings.ThisMonth + revenue.CreatorRevenue)
	earnings.ThisYear = domain.RoundCredits(earnings.ThisYear + revenue.CreatorRevenue)

	earnings.UpdatedAt = now

	if err := m.store.PutEarnings(ctx, earnings); err != nil {
		return fmt.Errorf("failed to store earnings: %w", err)
	}

	return nil
}

func (m *monetizationManager) GetCreatorEarnings(ctx context.Context, creatorID string) ([]domain.CreatorEarnings, error) {
	earnings, err := m.store.ListEarningsByCreator(ctx, creatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list earnings: %w", err)
	}

	return earnings, nil
}

func (m *monetizationManager) GetCreatorTotalEarnings(ctx context.Context, creatorID string) (domain.CreatorTotals, error) {
	earnings, err := m.store.ListEarningsByCreator(ctx, creatorID)
	if err != nil {
		return domain.CreatorTotals{}, fmt.Errorf("failed to list earnings: %w", err)
	}

	totals := domain.CreatorTotals{CreatorID: creatorID}
	for _, e := range earnings {
		totals.TotalRevenue = domain.RoundCredits(totals.TotalRevenue + e.TotalRevenue)
		totals.PendingPayout = domain.RoundCredits(totals.PendingPayout + e.PendingPayout)
		totals.PaidOut = domain.RoundCredits(totals.PaidOut + e.PaidOut)
		totals.ExecutionCount += e.ExecutionCount
		totals.WorkflowCount++
	}

	return totals, nil
}

func (m *monetizationManager) ProcessCreatorPayout(ctx context.Context, p domain.ProcessPayoutParams) (domain.Payout, error) {
	m.payoutMu.Lock()
	defer m.payoutMu.Unlock()

	earnings, err := m.store.ListEarningsByCreator(ctx, p.CreatorID)
	if err != nil {
		return domain.Payout{}, fmt.Errorf("failed to list earnings: %w", err)
	}

	var contributions []domain.PayoutContribution
	var totalPending float64
	for _, e := range earnings {
		if e.PendingPayout <= 0 {
			continue
		}

		contributions = append(contributions, domain.PayoutContribution{
			WorkflowID: e.WorkflowID,
			Amount:     e.PendingPayout,
		})
		totalPending = domain.RoundCredits(totalPending + e.PendingPayout)
	}

	if totalPending < m.config.MinimumPayout {
		return domain.Payout{}, fmt.Errorf("pending %.2f below minimum %.2f: %w",
			totalPending, m.config.MinimumPayout, domain.ErrBelowMinimumPayout)
	}

	payout := domain.Payout{
		ID:            xid.New().String(),
		CreatorID:     p.CreatorID,
		Status:        domain.PayoutStatusPending,
		GrossAmount:   totalPending,
		NetAmount:     totalPending,
		Currency:      m.config.Currency,
		PaymentMethod: p.PaymentMethod,
		Contributions: contributions,
		RequestedAt:   m.now(),
	}

	if err := m.store.PutPayout(ctx, payout); err != nil {
		return domain.Payout{}, fmt.Errorf("failed to store payout: %w", err)
	}

	log.Info().Msgf("Payout %s requested for creator %s (%.2f %s)", payout.ID, p.CreatorID, totalPending, payout.Currency)

	payoutID := payout.ID
	time.AfterFunc(m.config.SettlementDelay, func() {
		if _, err := m.SettlePayout(context.Background(), payoutID); err != nil {
			log.Error().Err(err).Msgf("Failed to settle payout %s", payoutID)
		}
	})

	return payout, nil
}

func (m *monetizationManager) GetPayout(ctx context.Context, payoutID string) (domain.Payout, error) {
	payout, ok, err := m.store.GetPayout(ctx, payoutID)
	if err != nil {
		return domain.Payout{}, fmt.Errorf("failed to load payout: %w", err)
	}

	if !ok {
		return domain.Payout{}, fmt.Errorf("payout %q: %w", payoutID, domain.ErrPayoutNotFound)
	}

	return payout, nil
}

func (m *monetizationManager) SettlePayout(ctx context.Context, payoutID string) (domain.Payout, error) {
	m.payoutMu.Lock()
	defer m.payoutMu.Unlock()

	payout, ok, err := m.store.GetPayout(ctx, payoutID)
	if err != nil {
		return domain.Payout{}, fmt.Errorf("failed to load payout: %w", err)
	}

	if !ok {
		return domain.Payout{}, fmt.Errorf("payout %q: %w", payoutID, domain.ErrPayoutNotFound)
	}

	// Settling a terminal payout is a no-op so a supervisor can re-drive
	// pending payouts safely after a restart.
	if payout.Status.IsTerminal() {
		return payout, nil
	}

	now := m.now()

	for _, contribution := range payout.Contributions {
		earnings, ok, err := m.store.GetEarnings(ctx, payout.CreatorID, contribution.WorkflowID)
		if err != nil {
			return domain.Payout{}, fmt.Errorf("failed to load earnings: %w", err)
		}
		if !ok {
			continue
		}

		moved := math.Min(contribution.Amount, earnings.PendingPayout)
		earnings.PendingPayout = domain.RoundCredits(earnings.PendingPayout - moved)
		earnings.PaidOut = domain.RoundCredits(earnings.PaidOut + moved)
		earnings.NextPayoutAt = nextFriday(now)
		earnings.UpdatedAt = now

		if err := m.store.PutEarnings(ctx, earnings); err != nil {
			return domain.Payout{}, fmt.Errorf("failed to store earnings: %w", err)
		}
	}

	payout.Status = domain.PayoutStatusCompleted
	payout.SettledAt = &now

	if err := m.store.PutPayout(ctx, payout); err != nil {
		return domain.Payout{}, fmt.Errorf("failed to store payout: %w", err)
	}

	log.Info().Msgf("Payout %s settled (%.2f %s)", payout.ID, payout.NetAmount, payout.Currency)

	return payout, nil
}

func (m *monetizationManager) SettlePendingPayouts(ctx context.Context) error {
	for _, status := range []domain.PayoutStatus{domain.PayoutStatusPending, domain.PayoutStatusProcessing} {
		payouts, err := m.store.ListPayoutsByStatus(ctx, status)
		if err != nil {
			return fmt.Errorf("failed to list payouts: %w", err)
		}

		for _, payout := range payouts {
			if _, err := m.SettlePayout(ctx, payout.ID); err != nil {
				return err
			}
		}
	}

	return nil
}

func (m *monetizationManager) GetWorkflowAnalytics(ctx context.Context, workflowID string) (domain.WorkflowAnalytics, error) {
	executions, err := m.store.ListExecutionsByWorkflow(ctx, workflowID)
	if err != nil {
		return domain.WorkflowAnalytics{}, fmt.Errorf("failed to list executions: %w", err)
	}

	analytics := domain.WorkflowAnalytics{WorkflowID: workflowID}

	revenueByUser := make(map[string]float64)
	var userOrder []string

	for _, execution := range executions {
		if !execution.Paid || execution.Cost.TotalCost == 0 {
			continue
		}

		analytics.TotalRevenue = domain.RoundCredits(analytics.TotalRevenue + execution.Cost.TotalCost)
		analytics.ExecutionCount++

		if _, seen := revenueByUser[execution.UserID]; !seen {
			userOrder = append(userOrder, execution.UserID)
		}
		revenueByUser[execution.UserID] = domain.RoundCredits(revenueByUser[execution.UserID] + execution.Cost.TotalCost)
	}

	analytics.UniqueUsers = len(revenueByUser)
	if analytics.ExecutionCount > 0 {
		analytics.AverageRevenue = domain.RoundCredits(analytics.TotalRevenue / float64(analytics.ExecutionCount))
	}

	ranked := make([]domain.UserRevenue, 0, len(userOrder))
	for _, userID := range userOrder {
		ranked = append(ranked, domain.UserRevenue{UserID: userID, Revenue: revenueByUser[userID]})
	}

	// Descending revenue; ties keep first-seen order.
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Revenue > ranked[j].Revenue
	})

	if len(ranked) > 10 {
		ranked = ranked[:10]
	}
	analytics.TopUsers = ranked

	return analytics, nil
}

func (m *monetizationManager) lockKey(key string) func() {
	m.keyLocksMu.Lock()
	lock, ok := m.keyLocks[key]
	if !ok {
		lock = &sync.Mutex{}
		m.keyLocks[key] = lock
	}
	m.keyLocksMu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// nextFriday returns the upcoming Friday at midnight UTC.
func nextFriday(now time.Time) time.Time {
	day := now.UTC().Truncate(24 * time.Hour)
	offset := (int(time.Friday) - int(day.Weekday()) + 7) % 7
	if offset == 0 {
		offset = 7
	}
	return day.AddDate(0, 0, offset)
}

package inmemory

import (
	"context"
	"sync"

	"github.com/frontand-tech/frontand/pkg/domain"
)

// ConnectionStore keeps each user's connection set in memory. Dev and test
// use only; nothing survives a restart.
type ConnectionStore struct {
	mu          sync.RWMutex
	connections map[string][]domain.Connection
}

func NewConnectionStore() *ConnectionStore {
	return &ConnectionStore{
		connections: make(map[string][]domain.Connection),
	}
}

func (s *ConnectionStore) SaveConnections(ctx context.Context, userID string, connections []domain.Connection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make([]domain.Connection, len(connections))
	copy(copied, connections)
	s.connections[userID] = copied

	return nil
}

func (s *ConnectionStore) LoadConnections(ctx context.Context, userID string) ([]domain.Connection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.connections[userID]
	copied := make([]domain.Connection, len(stored))
	copy(copied, stored)

	return copied, nil
}

// MonetizationStore keeps pricing, executions, earnings, quotas and
// payouts in mutex-guarded maps keyed by natural id.
type MonetizationStore struct {
	mu            sync.RWMutex
	pricing       map[string]domain.WorkflowPricing
	executions    map[string]domain.WorkflowExecution
	executionIDs  []string
	earnings      map[string]domain.CreatorEarnings
	earningsOrder []string
	quotas        map[string]domain.UsageQuota
	payouts       map[string]domain.Payout
	payoutIDs     []string
}

func NewMonetizationStore() *MonetizationStore {
	return &MonetizationStore{
		pricing:    make(map[string]domain.WorkflowPricing),
		executions: make(map[string]domain.WorkflowExecution),
		earnings:   make(map[string]domain.CreatorEarnings),
		quotas:     make(map[string]domain.UsageQuota),
		payouts:    make(map[string]domain.Payout),
	}
}

func earningsKey(creatorID, workflowID string) string {
	return creatorID + "|" + workflowID
}

func quotaKey(userID, workflowID string) string {
	return userID + "|" + workflowID
}

func (s *MonetizationStore) PutPricing(ctx context.Context, pricing domain.WorkflowPricing) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pricing[pricing.WorkflowID] = pricing

	return nil
}

func (s *MonetizationStore) GetPricing(ctx context.Context, workflowID string) (domain.WorkflowPricing, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pricing, ok := s.pricing[workflowID]

	return pricing, ok, nil
}

func (s *MonetizationStore) PutExecution(ctx context.Context, execution domain.WorkflowExecution) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.executions[execution.ID]; !ok {
		s.executionIDs = append(s.executionIDs, execution.ID)
	}
	s.executions[execution.ID] = execution

	return nil
}

func (s *MonetizationStore) GetExecution(ctx context.Context, executionID string) (domain.WorkflowExecution, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	execution, ok := s.executions[executionID]

	return execution, ok, nil
}

func (s *MonetizationStore) ListExecutionsByWorkflow(ctx context.Context, workflowID string) ([]domain.WorkflowExecution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var executions []domain.WorkflowExecution
	for _, id := range s.executionIDs {
		if execution := s.executions[id]; execution.WorkflowID == workflowID {
			executions = append(executions, execution)
		}
	}

	return executions, nil
}

func (s *MonetizationStore) PutEarnings(ctx context.Context, earnings domain.CreatorEarnings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := earningsKey(earnings.CreatorID, earnings.WorkflowID)
	if _, ok := s.earnings[key]; !ok {
		s.earningsOrder = append(s.earningsOrder, key)
	}
	s.earnings[key] = earnings

	return nil
}

func (s *MonetizationStore) GetEarnings(ctx context.Context, creatorID, workflowID string) (domain.CreatorEarnings, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	earnings, ok := s.earnings[earningsKey(creatorID, workflowID)]

	return earnings, ok, nil
}

func (s *MonetizationStore) ListEarningsByCreator(ctx context.Context, creatorID string) ([]domain.CreatorEarnings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []domain.CreatorEarnings
	for _, key := range s.earningsOrder {
		if earnings := s.earnings[key]; earnings.CreatorID == creatorID {
			results = append(results, earnings)
		}
	}

	return results, nil
}

func (s *MonetizationStore) PutQuota(ctx context.Context, quota domain.UsageQuota) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.quotas[quotaKey(quota.UserID, quota.WorkflowID)] = quota

	return nil
}

func (s *MonetizationStore) GetQuota(ctx context.Context, userID, workflowID string) (domain.UsageQuota, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	quota, ok := s.quotas[quotaKey(userID, workflowID)]

	return quota, ok, nil
}

func (s *MonetizationStore) PutPayout(ctx context.Context, payout domain.Payout) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.payouts[payout.ID]; !ok {
		s.payoutIDs = append(s.payoutIDs, payout.ID)
	}
	s.payouts[payout.ID] = payout

	return nil
}

func (s *MonetizationStore) GetPayout(ctx context.Context, payoutID string) (domain.Payout, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	payout, ok := s.payouts[payoutID]

	return payout, ok, nil
}

func (s *MonetizationStore) ListPayoutsByStatus(ctx context.Context, status domain.PayoutStatus) ([]domain.Payout, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var payouts []domain.Payout
	for _, id := range s.payoutIDs {
		if payout := s.payouts[id]; payout.Status == status {
			payouts = append(payouts, payout)
		}
	}

	return payouts, nil
}

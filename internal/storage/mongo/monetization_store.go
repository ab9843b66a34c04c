package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/frontand-tech/frontand/pkg/domain"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	pricingCollection    = "workflow_pricing"
	executionsCollection = "workflow_executions"
	earningsCollection   = "creator_earnings"
	quotasCollection     = "usage_quotas"
	payoutsCollection    = "payouts"
)

// MonetizationStore implements domain.MonetizationStore on MongoDB.
type MonetizationStore struct {
	database *mongo.Database
}

func NewMonetizationStore(database *mongo.Database) *MonetizationStore {
	store := &MonetizationStore{database: database}
	store.ensureIndexes()
	return store
}

func (s *MonetizationStore) ensureIndexes() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	indexes := map[string][]mongo.IndexModel{
		pricingCollection: {
			{Keys: bson.D{{Key: "workflow_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		executionsCollection: {
			{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "workflow_id", Value: 1}, {Key: "created_at", Value: 1}}},
		},
		earningsCollection: {
			{Keys: bson.D{{Key: "creator_id", Value: 1}, {Key: "workflow_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		quotasCollection: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "workflow_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		payoutsCollection: {
			{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "status", Value: 1}}},
		},
	}

	for name, models := range indexes {
		if _, err := s.database.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			log.Warn().Err(err).Msgf("Failed to create indexes for %s", name)
		}
	}
}

func (s *MonetizationStore) PutPricing(ctx context.Context, pricing domain.WorkflowPricing) error {
	return s.replaceOne(ctx, pricingCollection, bson.M{"workflow_id": pricing.WorkflowID}, pricing)
}

func (s *MonetizationStore) GetPricing(ctx context.Context, workflowID string) (domain.WorkflowPricing, bool, error) {
	var pricing domain.WorkflowPricing
	found, err := s.findOne(ctx, pricingCollection, bson.M{"workflow_id": workflowID}, &pricing)
	return pricing, found, err
}

func (s *MonetizationStore) PutExecution(ctx context.Context, execution domain.WorkflowExecution) error {
	return s.replaceOne(ctx, executionsCollection, bson.M{"id": execution.ID}, execution)
}

func (s *MonetizationStore) GetExecution(ctx context.Context, executionID string) (domain.WorkflowExecution, bool, error) {
	var execution domain.WorkflowExecution
	found, err := s.findOne(ctx, executionsCollection, bson.M{"id": executionID}, &execution)
	return execution, found, err
}

func (s *MonetizationStore) ListExecutionsByWorkflow(ctx context.Context, workflowID string) ([]domain.WorkflowExecution, error) {
	cursor, err := s.database.Collection(executionsCollection).Find(ctx,
		bson.M{"workflow_id": workflowID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list executions: %w", err)
	}
	defer cursor.Close(ctx)

	var executions []domain.WorkflowExecution
	if err := cursor.All(ctx, &executions); err != nil {
		return nil, fmt.Errorf("failed to decode executions: %w", err)
	}

	return executions, nil
}

func (s *MonetizationStore) PutEarnings(ctx context.Context, earnings domain.CreatorEarnings) error {
	filter := bson.M{"creator_id": earnings.CreatorID, "workflow_id": earnings.WorkflowID}
	return s.replaceOne(ctx, earningsCollection, filter, earnings)
}

func (s *MonetizationStore) GetEarnings(ctx context.Context, creatorID, workflowID string) (domain.CreatorEarnings, bool, error) {
	var earnings domain.CreatorEarnings
	found, err := s.findOne(ctx, earningsCollection, bson.M{"creator_id": creatorID, "workflow_id": workflowID}, &earnings)
	return earnings, found, err
}

func (s *MonetizationStore) ListEarningsByCreator(ctx context.Context, creatorID string) ([]domain.CreatorEarnings, error) {
	cursor, err := s.database.Collection(earningsCollection).Find(ctx,
		bson.M{"creator_id": creatorID},
		options.Find().SetSort(bson.D{{Key: "workflow_id", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list earnings: %w", err)
	}
	defer cursor.Close(ctx)

	var earnings []domain.CreatorEarnings
	if err := cursor.All(ctx, &earnings); err != nil {
		return nil, fmt.Errorf("failed to decode earnings: %w", err)
	}

	return earnings, nil
}

func (s *MonetizationStore) PutQuota(ctx context.Context, quota domain.UsageQuota) error {
	filter := bson.M{"user_id": quota.UserID, "workflow_id": quota.WorkflowID}
	return s.replaceOne(ctx, quotasCollection, filter, quota)
}

func (s *MonetizationStore) GetQuota(ctx context.Context, userID, workflowID string) (domain.UsageQuota, bool, error) {
	var quota domain.UsageQuota
	found, err := s.findOne(ctx, quotasCollection, bson.M{"user_id": userID, "workflow_id": workflowID}, &quota)
	return quota, found, err
}

func (s *MonetizationStore) PutPayout(ctx context.Context, payout domain.Payout) error {
	return s.replaceOne(ctx, payoutsCollection, bson.M{"id": payout.ID}, payout)
}

func (s *MonetizationStore) GetPayout(ctx context.Context, payoutID string) (domain.Payout, bool, error) {
	var payout domain.Payout
	found, err := s.findOne(ctx, payoutsCollection, bson.M{"id": payoutID}, &payout)
	return payout, found, err
}

func (s *MonetizationStore) ListPayoutsByStatus(ctx context.Context, status domain.PayoutStatus) ([]domain.Payout, error) {
	cursor, err := s.database.Collection(payoutsCollection).Find(ctx,
		bson.M{"status": status},
		options.Find().SetSort(bson.D{{Key: "requested_at", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list payouts: %w", err)
	}
	defer cursor.Close(ctx)

	var payouts []domain.Payout
	if err := cursor.All(ctx, &payouts); err != nil {
		return nil, fmt.Errorf("failed to decode payouts: %w", err)
	}

	return payouts, nil
}

func (s *MonetizationStore) replaceOne(ctx context.Context, collection string, filter bson.M, document any) error {
	_, err := s.database.Collection(collection).ReplaceOne(ctx, filter, document, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to store %s document: %w", collection, err)
	}

	return nil
}

func (s *MonetizationStore) findOne(ctx context.Context, collection string, filter bson.M, out any) (bool, error) {
	err := s.database.Collection(collection).FindOne(ctx, filter).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to load %s document: %w", collection, err)
	}

	return true, nil
}

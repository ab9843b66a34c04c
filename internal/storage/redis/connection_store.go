package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/frontand-tech/frontand/pkg/domain"

	"github.com/redis/go-redis/v9"
)

const (
	connectionKeyPrefix = "frontand:connections:"
	connectTimeout      = 5 * time.Second
)

// ConnectionStore persists each user's connection set as one JSON document
// per user key. Date fields round-trip through RFC3339 strings.
type ConnectionStore struct {
	client *redis.Client
}

type ConnectionStoreConfig struct {
	Addr     string
	Password string
	DB       int
}

func NewConnectionStore(config ConnectionStoreConfig) (*ConnectionStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &ConnectionStore{client: client}, nil
}

func (s *ConnectionStore) SaveConnections(ctx context.Context, userID string, connections []domain.Connection) error {
	payload, err := EncodeConnections(connections)
	if err != nil {
		return err
	}

	if err := s.client.Set(ctx, connectionKeyPrefix+userID, payload, 0).Err(); err != nil {
		return fmt.Errorf("failed to save connections: %w", err)
	}

	return nil
}

func (s *ConnectionStore) LoadConnections(ctx context.Context, userID string) ([]domain.Connection, error) {
	payload, err := s.client.Get(ctx, connectionKeyPrefix+userID).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load connections: %w", err)
	}

	return DecodeConnections(payload)
}

func (s *ConnectionStore) Close() error {
	return s.client.Close()
}

// EncodeConnections serializes a connection set; time fields marshal as
// RFC3339 strings.
func EncodeConnections(connections []domain.Connection) ([]byte, error) {
	payload, err := json.Marshal(connections)
	if err != nil {
		return nil, fmt.Errorf("failed to encode connections: %w", err)
	}

	return payload, nil
}

// DecodeConnections reconstructs a connection set, restoring time fields
// from their RFC3339 representation.
func DecodeConnections(payload []byte) ([]domain.Connection, error) {
	var connections []domain.Connection
	if err := json.Unmarshal(payload, &connections); err != nil {
		return nil, fmt.Errorf("failed to decode connections: %w", err)
	}

	return connections, nil
}

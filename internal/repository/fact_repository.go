package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/cellgroup-api/internal/models"
)

type outboxClient interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	RPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// FactRepository is the outbox the notification collaborator drains. Facts are pushed onto a
// Redis list once per kind, entity and week.
type FactRepository struct {
	client    outboxClient
	queueKey  string
	dedupeTTL time.Duration
	logger    *zap.Logger
}

// NewFactRepository constructs a fact outbox. A nil client turns every publish into a no-op.
func NewFactRepository(client *redis.Client, queueKey string, dedupeTTL time.Duration, logger *zap.Logger) *FactRepository {
	repo := &FactRepository{queueKey: queueKey, dedupeTTL: dedupeTTL, logger: logger}
	if client != nil {
		repo.client = client
	}
	if repo.logger == nil {
		repo.logger = zap.NewNop()
	}
	return repo
}

// DedupeKey identifies a fact within its week.
func (r *FactRepository) DedupeKey(fact models.Fact) string {
	return fmt.Sprintf("%s:seen:%s:%s:%s:%s", r.queueKey, fact.Kind, fact.CellGroupID, fact.EntityID, fact.Week)
}

// Publish pushes fact unless it was already published this week. The boolean reports whether it was pushed.
func (r *FactRepository) Publish(ctx context.Context, fact models.Fact) (bool, error) {
	if r.client == nil {
		return false, nil
	}

	payload, err := json.Marshal(fact)
	if err != nil {
		return false, fmt.Errorf("marshal fact %s: %w", fact.Kind, err)
	}

	key := r.DedupeKey(fact)
	fresh, err := r.client.SetNX(ctx, key, fact.ObservedAt.Unix(), r.dedupeTTL).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx %s: %w", key, err)
	}
	if !fresh {
		return false, nil
	}

	if err := r.client.RPush(ctx, r.queueKey, payload).Err(); err != nil {
		if delErr := r.client.Del(ctx, key).Err(); delErr != nil {
			r.logger.Warn("release fact dedupe key", zap.String("key", key), zap.Error(delErr))
		}
		return false, fmt.Errorf("redis rpush %s: %w", r.queueKey, err)
	}
	return true, nil
}

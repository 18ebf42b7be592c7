// Package cache implements the cache invalidation contract on Redis.
package cache

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/cardledger/backend/internal/application/adapter"
)

const (
	cardDataKeyFormat        = "cache:cards:%s"
	transactionDataKeyFormat = "cache:transactions:%s"

	// InvalidationChannel is the pub/sub channel on which invalidation
	// events are announced to other service instances.
	InvalidationChannel = "cache:invalidation"
)

// redisInvalidator implements adapter.CacheInvalidator. It deletes the
// user's cached entries and announces the invalidation on a pub/sub
// channel so sibling instances drop their local copies too.
type redisInvalidator struct {
	client *redis.Client
}

// NewRedisInvalidator creates a new Redis-backed cache invalidator.
func NewRedisInvalidator(client *redis.Client) adapter.CacheInvalidator {
	return &redisInvalidator{
		client: client,
	}
}

// InvalidateCardData signals that card, invoice or purchase data changed
// for the user.
func (r *redisInvalidator) InvalidateCardData(ctx context.Context, userID uuid.UUID) error {
	return r.invalidate(ctx, fmt.Sprintf(cardDataKeyFormat, userID), "cards", userID)
}

// InvalidateTransactionData signals that ledger data changed for the user.
func (r *redisInvalidator) InvalidateTransactionData(ctx context.Context, userID uuid.UUID) error {
	return r.invalidate(ctx, fmt.Sprintf(transactionDataKeyFormat, userID), "transactions", userID)
}

func (r *redisInvalidator) invalidate(ctx context.Context, key, scope string, userID uuid.UUID) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete cache key %s: %w", key, err)
	}

	event := fmt.Sprintf("%s:%s", scope, userID)
	if err := r.client.Publish(ctx, InvalidationChannel, event).Err(); err != nil {
		// The key is already gone; a missed announcement only delays
		// sibling instances until their TTL expires.
		slog.Debug("Failed to publish cache invalidation event", "event", event, "error", err)
	}

	return nil
}

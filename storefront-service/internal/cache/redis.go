package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/fjod/go_storefront/storefront-service/domain"
	"github.com/fjod/go_storefront/storefront-service/internal/cart"
	"github.com/redis/go-redis/v9"
)

const DefaultTTL = 24 * time.Hour

// snapshotVersion is part of both the key and the payload. Bump it when the
// line item layout changes so old snapshots read as misses instead of
// decoding into half-filled carts.
const snapshotVersion = 1

type snapshot struct {
	Version int               `json:"version"`
	Items   []domain.LineItem `json:"items"`
	SavedAt time.Time         `json:"savedAt"`
}

func NewRedisCache(client *redis.Client, baseTTL time.Duration) *RedisCache {
	if baseTTL <= 0 {
		baseTTL = DefaultTTL
	}
	return &RedisCache{
		client:  client,
		baseTTL: baseTTL,
		now:     time.Now,
	}
}

type RedisCache struct {
	client  *redis.Client
	baseTTL time.Duration
	now     func() time.Time
}

// Get loads a cart snapshot. Snapshots written under another version read as
// ErrCacheMiss. Lines without an identity or with a non-positive quantity are
// dropped.
func (r *RedisCache) Get(ctx context.Context, sessionID string) (*cart.State, error) {
	data, err := r.client.Get(ctx, cacheKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("unmarshal cart failed: %w", err)
	}
	if snap.Version != snapshotVersion {
		return nil, ErrCacheMiss
	}

	state := cart.State{Items: make([]domain.LineItem, 0, len(snap.Items))}
	for _, item := range snap.Items {
		if item.Qty <= 0 || item.Product.Identity() == "" {
			continue
		}
		state.Items = append(state.Items, item)
	}
	return &state, nil
}

// Set stores the snapshot with the base TTL plus up to five minutes of
// jitter so carts written together do not expire together.
func (r *RedisCache) Set(ctx context.Context, sessionID string, state cart.State) error {
	data, err := json.Marshal(snapshot{
		Version: snapshotVersion,
		Items:   state.Items,
		SavedAt: r.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}

	ttl := r.baseTTL + time.Duration(rand.IntN(5))*time.Minute
	if err := r.client.Set(ctx, cacheKey(sessionID), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisCache) Delete(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, cacheKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func cacheKey(sessionID string) string {
	return fmt.Sprintf("cart:v%d:%s", snapshotVersion, sessionID)
}

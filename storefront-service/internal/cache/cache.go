package cache

import (
	"context"
	"errors"

	"github.com/fjod/go_storefront/storefront-service/internal/cart"
)

// CartCache keeps a snapshot of each session cart.
type CartCache interface {
	Get(ctx context.Context, sessionID string) (*cart.State, error)
	Set(ctx context.Context, sessionID string, state cart.State) error
	Delete(ctx context.Context, sessionID string) error
}

var ErrCacheMiss = errors.New("cache miss")

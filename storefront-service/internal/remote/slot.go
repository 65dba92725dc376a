package remote

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Slot is a single persisted value such as a session token. An empty slot
// means logged out; it is never an error.
type Slot interface {
	Load(ctx context.Context) (string, bool, error)
	Save(ctx context.Context, value string) error
	Clear(ctx context.Context) error
}

type MemorySlot struct {
	mu    sync.RWMutex
	value string
	set   bool
}

func NewMemorySlot() *MemorySlot {
	return &MemorySlot{}
}

func (s *MemorySlot) Load(context.Context) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value, s.set, nil
}

func (s *MemorySlot) Save(_ context.Context, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value, s.set = value, true
	return nil
}

func (s *MemorySlot) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value, s.set = "", false
	return nil
}

// RedisSlot keeps the value under one key. The TTL is refreshed on Save.
type RedisSlot struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

func NewRedisSlot(client *redis.Client, key string, ttl time.Duration) *RedisSlot {
	return &RedisSlot{client: client, key: key, ttl: ttl}
}

func (s *RedisSlot) Load(ctx context.Context) (string, bool, error) {
	v, err := s.client.Get(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get %s failed: %w", s.key, err)
	}
	return v, true, nil
}

func (s *RedisSlot) Save(ctx context.Context, value string) error {
	if err := s.client.Set(ctx, s.key, value, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s failed: %w", s.key, err)
	}
	return nil
}

func (s *RedisSlot) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("redis delete %s failed: %w", s.key, err)
	}
	return nil
}

// SessionSlots are the persisted slots of one browser session.
type SessionSlots struct {
	VendorToken Slot
	AdminToken  Slot
	Vendor      Slot
}

// RedisSessionSlots lays the session slots out as session:<id>:<name>.
func RedisSessionSlots(client *redis.Client, sessionID string, ttl time.Duration) SessionSlots {
	key := func(name string) string { return fmt.Sprintf("session:%s:%s", sessionID, name) }
	return SessionSlots{
		VendorToken: NewRedisSlot(client, key("token"), ttl),
		AdminToken:  NewRedisSlot(client, key("admin_token"), ttl),
		Vendor:      NewRedisSlot(client, key("vendor"), ttl),
	}
}

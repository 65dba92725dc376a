package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fjod/go_storefront/storefront-service/domain"
	"github.com/fjod/go_storefront/storefront-service/internal/cache"
	"github.com/fjod/go_storefront/storefront-service/internal/cart"
	"golang.org/x/sync/singleflight"
)

// CartService owns one cart store per browser session. Stores live in memory
// and are written through to the cache so a restart does not lose carts.
type CartService struct {
	cache cache.CartCache
	log   *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
	sfg      singleflight.Group // Prevents cache stampede on first use
	now      func() time.Time
}

func NewCartService(cache cache.CartCache, log *slog.Logger) *CartService {
	return &CartService{
		cache:    cache,
		log:      log,
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

// Session returns the cart of sessionID, loading its snapshot on first use.
// An unknown session starts with an empty cart. A cache failure other than a
// miss returns ErrCartUnavailable and nothing is kept, so the next call
// retries the load.
func (s *CartService) Session(ctx context.Context, sessionID string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if ok {
		sess.touch(s.now())
		return sess, nil
	}

	v, err, _ := s.sfg.Do(sessionID, func() (interface{}, error) {
		s.mu.RLock()
		existing, ok := s.sessions[sessionID]
		s.mu.RUnlock()
		if ok {
			return existing, nil
		}

		var initial cart.State
		state, err := s.cache.Get(ctx, sessionID)
		switch {
		case err == nil:
			initial = *state
		case errors.Is(err, cache.ErrCacheMiss):
		default:
			s.log.WarnContext(ctx, "cart cache get failed", "session_id", sessionID, "error", err)
			return nil, fmt.Errorf("%w: %w", ErrCartUnavailable, err)
		}

		sess := &Session{
			id:    sessionID,
			store: cart.NewStore(initial),
			svc:   s,
		}
		sess.touch(s.now())

		s.mu.Lock()
		s.sessions[sessionID] = sess
		s.mu.Unlock()
		return sess, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Session), nil
}

// EvictIdle drops sessions not used for idle. Their snapshots stay in the
// cache and are reloaded on the next request. A session whose last snapshot
// write failed is written again first and stays in memory until that works.
func (s *CartService) EvictIdle(ctx context.Context, idle time.Duration) int {
	cutoff := s.now().Add(-idle)

	s.mu.RLock()
	var candidates []*Session
	for _, sess := range s.sessions {
		if sess.lastUsed().Before(cutoff) {
			candidates = append(candidates, sess)
		}
	}
	s.mu.RUnlock()

	n := 0
	for _, sess := range candidates {
		if !sess.sync(ctx) {
			continue
		}
		s.mu.Lock()
		if s.sessions[sess.id] == sess && sess.lastUsed().Before(cutoff) {
			delete(s.sessions, sess.id)
			n++
		}
		s.mu.Unlock()
	}
	return n
}

// RunJanitor evicts idle sessions every tick until ctx is done.
func (s *CartService) RunJanitor(ctx context.Context, tick, idle time.Duration) {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if n := s.EvictIdle(ctx, idle); n > 0 {
				s.log.Debug("evicted idle carts", "count", n)
			}
		case <-ctx.Done():
			return
		}
	}
}

// Session is the cart of one browser session.
type Session struct {
	id    string
	store *cart.Store
	svc   *CartService

	// dispatchMu keeps snapshots written in dispatch order.
	dispatchMu sync.Mutex

	mu   sync.Mutex
	used time.Time
	// dirty is set while the cached snapshot differs from the store.
	dirty bool
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) Items() []domain.LineItem {
	return s.store.Items()
}

func (s *Session) State() cart.State {
	return s.store.State()
}

// Dispatch applies a to the cart and writes the new snapshot to the cache.
// Cache failures are logged and the session is kept in memory, where it stays
// authoritative, until a later write succeeds.
func (s *Session) Dispatch(ctx context.Context, a cart.Action) error {
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()

	if err := s.store.Dispatch(a); err != nil {
		return err
	}
	s.touch(s.svc.now())
	s.persist(ctx)
	return nil
}

// sync writes the snapshot again if the last write failed. It reports whether
// the cache now matches the store.
func (s *Session) sync(ctx context.Context) bool {
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()

	if !s.isDirty() {
		return true
	}
	return s.persist(ctx)
}

// persist stores the current state. An empty cart deletes its snapshot.
// Callers hold dispatchMu.
func (s *Session) persist(ctx context.Context) bool {
	state := s.store.State()

	var err error
	if len(state.Items) == 0 {
		if err = s.svc.cache.Delete(ctx, s.id); err != nil {
			s.svc.log.WarnContext(ctx, "cart cache delete failed", "session_id", s.id, "error", err)
		}
	} else if err = s.svc.cache.Set(ctx, s.id, state); err != nil {
		s.svc.log.WarnContext(ctx, "cart cache set failed", "session_id", s.id, "error", err)
	}

	s.mu.Lock()
	s.dirty = err != nil
	s.mu.Unlock()
	return err == nil
}

func (s *Session) isDirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

func (s *Session) touch(at time.Time) {
	s.mu.Lock()
	s.used = at
	s.mu.Unlock()
}

func (s *Session) lastUsed() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.used
}

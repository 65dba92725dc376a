package checkout

import (
	"context"
	"sync"
	"time"

	"github.com/fjod/go_storefront/storefront-service/domain"
	"github.com/fjod/go_storefront/storefront-service/internal/cart"
	"github.com/fjod/go_storefront/storefront-service/internal/payment"
	"github.com/fjod/go_storefront/storefront-service/internal/remote"
)

// MockPlacer records every order it is asked to place. FailOn maps a
// submission position (0 = aggregate) to the answer given at that position.
type MockPlacer struct {
	mu     sync.Mutex
	Orders []domain.OrderRecord
	FailOn map[int]error
	Reject map[int]string
	// OnPlace runs before the answer at each position.
	OnPlace func(pos int)
}

func (m *MockPlacer) PlaceOrder(_ context.Context, o domain.OrderRecord) (*remote.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	pos := len(m.Orders)
	m.Orders = append(m.Orders, o)
	if m.OnPlace != nil {
		m.OnPlace(pos)
	}
	if err, ok := m.FailOn[pos]; ok {
		return nil, err
	}
	if msg, ok := m.Reject[pos]; ok {
		return &remote.Response{Success: false, Message: msg}, nil
	}
	return &remote.Response{Success: true}, nil
}

// MockGate returns a fixed reference or error.
type MockGate struct {
	Ref  string
	Err  error
	Seen payment.Request
}

func (m *MockGate) Confirm(_ context.Context, req payment.Request) (string, error) {
	m.Seen = req
	return m.Ref, m.Err
}

// cartStore adapts cart.Store to the Cart interface.
type cartStore struct {
	*cart.Store
}

func (c cartStore) Dispatch(_ context.Context, a cart.Action) error {
	return c.Store.Dispatch(a)
}

func newCart(items ...domain.LineItem) cartStore {
	return cartStore{cart.NewStore(cart.State{Items: items})}
}

type ledgerEntry struct {
	Ref    string
	Key    string
	Status SubmissionStatus
}

// MockLedger keeps submissions in memory.
type MockLedger struct {
	Entries   []ledgerEntry
	Completed map[string][]byte
	Claims    map[string]string
	ReadErr   error
	ClaimErr  error
}

func (m *MockLedger) ClaimReference(_ context.Context, ref, fingerprint string) error {
	if m.ClaimErr != nil {
		return m.ClaimErr
	}
	if m.Claims == nil {
		m.Claims = map[string]string{}
	}
	if fp, ok := m.Claims[ref]; ok && fp != fingerprint {
		return ErrReferenceReused
	}
	m.Claims[ref] = fingerprint
	return nil
}

func (m *MockLedger) SucceededSubmissions(_ context.Context, ref string) (map[string]bool, error) {
	if m.ReadErr != nil {
		return nil, m.ReadErr
	}
	done := map[string]bool{}
	for _, e := range m.Entries {
		if e.Ref == ref && e.Status == StatusSucceeded {
			done[e.Key] = true
		}
	}
	return done, nil
}

func (m *MockLedger) RecordSubmission(_ context.Context, ref, key string, status SubmissionStatus, _ time.Time) error {
	m.Entries = append(m.Entries, ledgerEntry{Ref: ref, Key: key, Status: status})
	return nil
}

func (m *MockLedger) CompleteCheckout(_ context.Context, ref string, payload []byte) error {
	if m.Completed == nil {
		m.Completed = map[string][]byte{}
	}
	m.Completed[ref] = payload
	return nil
}

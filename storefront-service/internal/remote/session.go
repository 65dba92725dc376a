package remote

import (
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionClients hands out clients bound to the slots of one browser
// session, so each session logs in and out on its own.
type SessionClients struct {
	transport Transport
	slots     func(sessionID string) SessionSlots
}

func NewSessionClients(transport Transport, slots func(sessionID string) SessionSlots) *SessionClients {
	return &SessionClients{transport: transport, slots: slots}
}

// NewRedisSessionClients keeps every session's slots in Redis.
func NewRedisSessionClients(transport Transport, client *redis.Client, ttl time.Duration) *SessionClients {
	return NewSessionClients(transport, func(sessionID string) SessionSlots {
		return RedisSessionSlots(client, sessionID, ttl)
	})
}

func (c *SessionClients) Vendor(sessionID string) Store {
	s := c.slots(sessionID)
	return NewClient(c.transport, s.VendorToken, s.Vendor)
}

func (c *SessionClients) Admin(sessionID string) AdminStore {
	return NewAdminClient(c.transport, c.slots(sessionID).AdminToken)
}

// MemorySessionSlots keeps slots in process memory. Sessions never expire.
func MemorySessionSlots() func(sessionID string) SessionSlots {
	var mu sync.Mutex
	sessions := make(map[string]SessionSlots)
	return func(sessionID string) SessionSlots {
		mu.Lock()
		defer mu.Unlock()
		s, ok := sessions[sessionID]
		if !ok {
			s = SessionSlots{
				VendorToken: NewMemorySlot(),
				AdminToken:  NewMemorySlot(),
				Vendor:      NewMemorySlot(),
			}
			sessions[sessionID] = s
		}
		return s
	}
}

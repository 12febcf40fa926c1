package storage

import (
	"context"
	"sync"
	"time"

	"github.com/jason-slatt/cameroon-voice-ai/internal/domain/models"
)

type memoryEntry struct {
	state     *models.ConversationState
	expiresAt time.Time
}

// MemoryStore is a mutex-guarded TTL map. Expired entries are dropped lazily
// on read and by an occasional sweep on write; there is no background
// goroutine to manage.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	writes  int

	// overridable in tests
	now func() time.Time
}

// NewMemoryStore creates an in-memory store whose entries expire after ttl.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the state for a conversation, or ErrNotFound when absent or
// expired.
func (s *MemoryStore) Get(_ context.Context, conversationID string) (*models.ConversationState, error) {
	s.mu.RLock()
	entry, ok := s.entries[conversationID]
	s.mu.RUnlock()

	if !ok || s.now().After(entry.expiresAt) {
		if ok {
			s.mu.Lock()
			delete(s.entries, conversationID)
			s.mu.Unlock()
		}
		return nil, ErrNotFound
	}

	// Copy out so callers never share the stored struct.
	clone := *entry.state
	clone.CollectedData = copyData(entry.state.CollectedData)
	return &clone, nil
}

// Save stores the state and restarts its TTL.
func (s *MemoryStore) Save(_ context.Context, state *models.ConversationState) error {
	clone := *state
	clone.CollectedData = copyData(state.CollectedData)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[state.ConversationID] = memoryEntry{
		state:     &clone,
		expiresAt: s.now().Add(s.ttl),
	}

	s.writes++
	if s.writes%100 == 0 {
		s.sweepLocked()
	}
	return nil
}

// Delete removes the state for a conversation. Deleting an absent key is not
// an error.
func (s *MemoryStore) Delete(_ context.Context, conversationID string) error {
	s.mu.Lock()
	delete(s.entries, conversationID)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) sweepLocked() {
	now := s.now()
	for id, entry := range s.entries {
		if now.After(entry.expiresAt) {
			delete(s.entries, id)
		}
	}
}

func copyData(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

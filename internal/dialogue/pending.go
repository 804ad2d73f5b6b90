package dialogue

import (
	"context"
	"sync"
	"time"

	"github.com/FanchonSora/V-Assistant/internal/dsl"
)

// PendingAction is an actionable intent held back until the user confirms
// it. At most one exists per user; a newer actionable intent overwrites it.
type PendingAction struct {
	UserID    string
	Intent    dsl.Intent // always Create, Delete or Modify
	Missing   []string   // fields the utterance left unspecified
	CreatedAt time.Time
}

// PendingStore holds per-user pending actions. Implementations must be safe
// for concurrent use; the engine serializes per user on top of this.
type PendingStore interface {
	// Get returns the user's pending action, or nil when there is none.
	Get(ctx context.Context, userID string) (*PendingAction, error)
	// Put stores the action, replacing any existing one for the same user.
	Put(ctx context.Context, action *PendingAction) error
	// Delete removes the user's pending action. Deleting when none exists
	// is not an error.
	Delete(ctx context.Context, userID string) error
}

// MemoryPendingStore is an in-process PendingStore.
type MemoryPendingStore struct {
	mu      sync.RWMutex
	pending map[string]*PendingAction
}

// NewMemoryPendingStore builds an empty in-memory store.
func NewMemoryPendingStore() *MemoryPendingStore {
	return &MemoryPendingStore{pending: make(map[string]*PendingAction)}
}

func (s *MemoryPendingStore) Get(_ context.Context, userID string) (*PendingAction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	action, ok := s.pending[userID]
	if !ok {
		return nil, nil
	}
	clone := *action
	return &clone, nil
}

func (s *MemoryPendingStore) Put(_ context.Context, action *PendingAction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *action
	s.pending[action.UserID] = &clone
	return nil
}

func (s *MemoryPendingStore) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, userID)
	return nil
}

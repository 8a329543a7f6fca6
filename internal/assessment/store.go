package assessment

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/p-n-ai/pai-course/internal/grading"
)

// ErrSessionNotFound is returned for unknown or expired session ids.
var ErrSessionNotFound = errors.New("session not found")

// Store keeps session snapshots between requests. It holds in-flight attempts
// only; entries expire and are not a progress record.
type Store interface {
	// Create stores snap under a new id and returns the id.
	Create(ctx context.Context, snap Snapshot) (string, error)
	Get(ctx context.Context, id string) (Snapshot, error)
	// Update applies fn to the stored snapshot and saves the result. Concurrent
	// updates to the same session are serialised.
	Update(ctx context.Context, id string, fn func(*Snapshot) error) error
}

// MemoryStore is an in-memory Store.
type MemoryStore struct {
	sessions map[string]memoryEntry
	ttl      time.Duration
	now      func() time.Time
	mu       sync.Mutex
}

type memoryEntry struct {
	snap      Snapshot
	expiresAt time.Time
}

// NewMemoryStore creates an in-memory store. A zero ttl keeps sessions forever.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]memoryEntry),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (s *MemoryStore) Create(_ context.Context, snap Snapshot) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evictExpired()
	id := newSessionID()
	snap.ID = id
	s.sessions[id] = memoryEntry{snap: cloneSnapshot(snap), expiresAt: s.expiry()}
	return id, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.lookup(id)
	if !ok {
		return Snapshot{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return cloneSnapshot(e.snap), nil
}

func (s *MemoryStore) Update(_ context.Context, id string, fn func(*Snapshot) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.lookup(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	snap := cloneSnapshot(e.snap)
	if err := fn(&snap); err != nil {
		return err
	}
	snap.ID = id
	s.sessions[id] = memoryEntry{snap: snap, expiresAt: s.expiry()}
	return nil
}

func (s *MemoryStore) lookup(id string) (memoryEntry, bool) {
	e, ok := s.sessions[id]
	if !ok {
		return memoryEntry{}, false
	}
	if !e.expiresAt.IsZero() && s.now().After(e.expiresAt) {
		delete(s.sessions, id)
		return memoryEntry{}, false
	}
	return e, true
}

func (s *MemoryStore) evictExpired() {
	now := s.now()
	for id, e := range s.sessions {
		if !e.expiresAt.IsZero() && now.After(e.expiresAt) {
			delete(s.sessions, id)
		}
	}
}

func (s *MemoryStore) expiry() time.Time {
	if s.ttl <= 0 {
		return time.Time{}
	}
	return s.now().Add(s.ttl)
}

func cloneSnapshot(snap Snapshot) Snapshot {
	results := make(map[string]grading.Result, len(snap.Results))
	for k, v := range snap.Results {
		results[k] = v
	}
	snap.Results = results
	return snap
}

func newSessionID() string {
	return uuid.NewString()
}

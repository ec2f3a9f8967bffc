package ledger

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"voiceagent-platform/internal/calls"
)

// MemoryStore is an in-memory Store for tests and early development.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]Entry)}
}

func (s *MemoryStore) ByExternalID(ctx context.Context, externalCallID string) (Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[externalCallID]
	if !ok {
		return Entry{}, ErrNotFound
	}
	return e, nil
}

func (s *MemoryStore) Upsert(ctx context.Context, e Entry) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	if existing, ok := s.entries[e.ExternalCallID]; ok {
		e.ID = existing.ID
		e.CreatedAt = existing.CreatedAt
	} else {
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		e.CreatedAt = now
	}
	e.UpdatedAt = now
	s.entries[e.ExternalCallID] = e
	return e, nil
}

func (s *MemoryStore) SetOutcome(ctx context.Context, externalCallID string, outcome calls.Outcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[externalCallID]
	if !ok {
		return ErrNotFound
	}
	e.Outcome = outcome
	e.UpdatedAt = time.Now().UTC()
	s.entries[externalCallID] = e
	return nil
}

func (s *MemoryStore) SetBilled(ctx context.Context, externalCallID string, billed bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[externalCallID]
	if !ok {
		return ErrNotFound
	}
	e.Billed = billed
	e.UpdatedAt = time.Now().UTC()
	s.entries[externalCallID] = e
	return nil
}

func (s *MemoryStore) List(ctx context.Context, f ListFilter) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		if f.AccountID != 0 && e.AccountID != f.AccountID {
			continue
		}
		if f.Outcome != "" && e.Outcome != f.Outcome {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

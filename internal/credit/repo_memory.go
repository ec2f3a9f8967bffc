package credit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store for tests and early development.
type MemoryStore struct {
	mu       sync.Mutex
	balances map[int64]float64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{balances: make(map[int64]float64)}
}

// Seed sets an account's balance directly, bypassing adjustment rules.
func (s *MemoryStore) Seed(accountID int64, credits float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances[accountID] = credits
}

func (s *MemoryStore) Get(ctx context.Context, accountID int64) (Balance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	credits, ok := s.balances[accountID]
	if !ok {
		return Balance{}, ErrNotFound
	}
	return Balance{AccountID: accountID, Credits: credits, UpdatedAt: time.Now().UTC()}, nil
}

func (s *MemoryStore) Debit(ctx context.Context, accountID int64, amount float64) (Balance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	credits, ok := s.balances[accountID]
	if !ok {
		return Balance{}, ErrNotFound
	}
	credits -= amount
	s.balances[accountID] = credits
	return Balance{AccountID: accountID, Credits: credits, UpdatedAt: time.Now().UTC()}, nil
}

func (s *MemoryStore) Adjust(ctx context.Context, accountID int64, op AdjustOp, amount float64) (Balance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	credits, ok := s.balances[accountID]
	if !ok {
		return Balance{}, ErrNotFound
	}
	switch op {
	case OpAdd:
		credits += amount
	case OpSubtract:
		if credits-amount < 0 {
			return Balance{}, ErrInsufficientCredits
		}
		credits -= amount
	case OpSet:
		credits = amount
	default:
		return Balance{}, ErrInvalidOp
	}
	s.balances[accountID] = credits
	return Balance{AccountID: accountID, Credits: credits, UpdatedAt: time.Now().UTC()}, nil
}

package credit

import (
	"context"
	"errors"
	"testing"
)

// Both implementations must satisfy the Store contract.
var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*PostgresStore)(nil)
)

func TestDebit_MayGoNegative(t *testing.T) {
	s := NewMemoryStore()
	s.Seed(1, 0.05)

	b, err := s.Debit(context.Background(), 1, 0.18)
	if err != nil {
		t.Fatalf("debit: %v", err)
	}
	if b.Credits > -0.12 || b.Credits < -0.14 {
		t.Fatalf("balance = %v, want about -0.13", b.Credits)
	}
}

func TestDebit_UnknownAccount(t *testing.T) {
	s := NewMemoryStore()
	if _, err := s.Debit(context.Background(), 42, 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestAdjust_SubtractFloorsAtZero(t *testing.T) {
	s := NewMemoryStore()
	s.Seed(1, 5)

	if _, err := s.Adjust(context.Background(), 1, OpSubtract, 6); !errors.Is(err, ErrInsufficientCredits) {
		t.Fatalf("err = %v, want ErrInsufficientCredits", err)
	}
	// Balance untouched after a rejected subtraction.
	b, err := s.Get(context.Background(), 1)
	if err != nil || b.Credits != 5 {
		t.Fatalf("balance = %v err=%v, want 5", b.Credits, err)
	}

	b, err = s.Adjust(context.Background(), 1, OpSubtract, 5)
	if err != nil {
		t.Fatalf("subtract to zero: %v", err)
	}
	if b.Credits != 0 {
		t.Fatalf("balance = %v, want 0", b.Credits)
	}
}

func TestAdjust_AddAndSet(t *testing.T) {
	s := NewMemoryStore()
	s.Seed(1, 2)
	ctx := context.Background()

	b, err := s.Adjust(ctx, 1, OpAdd, 3)
	if err != nil || b.Credits != 5 {
		t.Fatalf("add: balance=%v err=%v", b.Credits, err)
	}
	b, err = s.Adjust(ctx, 1, OpSet, 100)
	if err != nil || b.Credits != 100 {
		t.Fatalf("set: balance=%v err=%v", b.Credits, err)
	}
	if _, err := s.Adjust(ctx, 1, AdjustOp("multiply"), 2); !errors.Is(err, ErrInvalidOp) {
		t.Fatalf("err = %v, want ErrInvalidOp", err)
	}
}

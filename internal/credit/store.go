package credit

import (
	"context"
	"errors"
)

var (
	ErrNotFound            = errors.New("credit: account not found")
	ErrInsufficientCredits = errors.New("credit: insufficient credits")
	ErrInvalidOp           = errors.New("credit: invalid adjustment op")
)

// Store tracks per-account credit balances.
//
// Debit is the automated billing path and may take a balance negative; a
// call that already happened is owed for regardless of the balance. Manual
// subtraction via Adjust floors at zero instead.
type Store interface {
	// Get returns the balance for an account, or ErrNotFound.
	Get(ctx context.Context, accountID int64) (Balance, error)

	// Debit atomically subtracts amount from the account's balance and
	// returns the new balance. The result may be negative.
	Debit(ctx context.Context, accountID int64, amount float64) (Balance, error)

	// Adjust applies a manual balance change. OpSubtract returns
	// ErrInsufficientCredits when the balance would go negative.
	Adjust(ctx context.Context, accountID int64, op AdjustOp, amount float64) (Balance, error)
}

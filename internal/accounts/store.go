package accounts

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("accounts: not found")

// Directory is the read/write contract used by billing and administration.
// Account creation/signup is owned elsewhere; the billing core only needs
// lookup, listing for credit views, and flat-rate updates.
type Directory interface {
	Get(ctx context.Context, id int64) (Account, error)

	// ListVisibleTo returns the accounts a requester may see:
	// owner sees all, an agency sees itself plus its clients, a client
	// sees only itself.
	ListVisibleTo(ctx context.Context, requesterID int64, requesterRole string) ([]Account, error)

	// UpdateFlatRates sets the legacy per-minute rates for an account.
	UpdateFlatRates(ctx context.Context, id int64, outbound, inbound float64) (Account, error)
}

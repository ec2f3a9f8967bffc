package ledger

import (
	"context"
	"errors"

	"voiceagent-platform/internal/calls"
)

var ErrNotFound = errors.New("ledger: entry not found")

// ListFilter narrows List results. Zero values mean no constraint.
type ListFilter struct {
	AccountID int64
	Outcome   calls.Outcome
	Limit     int
}

// Store persists ledger entries keyed by the upstream call id.
type Store interface {
	// ByExternalID returns the entry for an upstream call id, or
	// ErrNotFound.
	ByExternalID(ctx context.Context, externalCallID string) (Entry, error)

	// Upsert writes the entry, inserting or replacing on external call id,
	// and returns the stored row.
	Upsert(ctx context.Context, e Entry) (Entry, error)

	// SetOutcome updates only the outcome of an existing entry.
	SetOutcome(ctx context.Context, externalCallID string, outcome calls.Outcome) error

	// SetBilled flips the billed flag of an existing entry.
	SetBilled(ctx context.Context, externalCallID string, billed bool) error

	// List returns entries matching the filter, most recent first.
	List(ctx context.Context, f ListFilter) ([]Entry, error)
}

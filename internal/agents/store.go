package agents

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("agents: not found")

// Directory resolves agents for billing. Lookups return (Agent, false, nil)
// when no agent matches; errors are reserved for infrastructure failures.
type Directory interface {
	ByUpstreamAssistant(ctx context.Context, assistantID string) (Agent, bool, error)
	ByID(ctx context.Context, id int64) (Agent, bool, error)
}

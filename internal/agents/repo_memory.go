package agents

import (
	"context"
	"sync"
)

// MemoryDirectory is a simple in-memory directory useful for tests and early development.
type MemoryDirectory struct {
	mu     sync.RWMutex
	Agents []Agent
}

func NewMemoryDirectory(seed ...Agent) *MemoryDirectory {
	return &MemoryDirectory{Agents: seed}
}

func (d *MemoryDirectory) ByUpstreamAssistant(ctx context.Context, assistantID string) (Agent, bool, error) {
	_ = ctx
	if assistantID == "" {
		return Agent{}, false, nil
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, a := range d.Agents {
		if a.UpstreamAssistantID == assistantID {
			return a, true, nil
		}
	}
	return Agent{}, false, nil
}

func (d *MemoryDirectory) ByID(ctx context.Context, id int64) (Agent, bool, error) {
	_ = ctx
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, a := range d.Agents {
		if a.ID == id {
			return a, true, nil
		}
	}
	return Agent{}, false, nil
}

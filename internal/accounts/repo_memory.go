package accounts

import (
	"context"
	"sort"
	"sync"
	"time"

	"voiceagent-platform/internal/rbac"
)

// MemoryDirectory is a simple in-memory directory useful for tests and early development.
//
// NOTE: This is not intended for production; replace with the Postgres implementation.
type MemoryDirectory struct {
	mu       sync.RWMutex
	Accounts map[int64]Account
}

func NewMemoryDirectory(seed ...Account) *MemoryDirectory {
	d := &MemoryDirectory{Accounts: make(map[int64]Account)}
	for _, a := range seed {
		d.Accounts[a.ID] = a
	}
	return d
}

func (d *MemoryDirectory) Get(ctx context.Context, id int64) (Account, error) {
	_ = ctx
	d.mu.RLock()
	defer d.mu.RUnlock()
	a, ok := d.Accounts[id]
	if !ok {
		return Account{}, ErrNotFound
	}
	return a, nil
}

func (d *MemoryDirectory) ListVisibleTo(ctx context.Context, requesterID int64, requesterRole string) ([]Account, error) {
	_ = ctx
	d.mu.RLock()
	defer d.mu.RUnlock()

	var out []Account
	for _, a := range d.Accounts {
		switch {
		case rbac.IsOwner(requesterRole):
			out = append(out, a)
		case rbac.IsAgency(requesterRole):
			if a.ID == requesterID || (a.AgencyID != nil && *a.AgencyID == requesterID) {
				out = append(out, a)
			}
		default:
			if a.ID == requesterID {
				out = append(out, a)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (d *MemoryDirectory) UpdateFlatRates(ctx context.Context, id int64, outbound, inbound float64) (Account, error) {
	_ = ctx
	d.mu.Lock()
	defer d.mu.Unlock()
	a, ok := d.Accounts[id]
	if !ok {
		return Account{}, ErrNotFound
	}
	a.OutboundRate = outbound
	a.InboundRate = inbound
	a.UpdatedAt = time.Now().UTC()
	d.Accounts[id] = a
	return a, nil
}

package rates

import (
	"context"
	"sync"
	"time"
)

// MemoryRepo is a simple in-memory repository useful for tests and early development.
type MemoryRepo struct {
	mu           sync.RWMutex
	Models       []ModelRate
	Transcribers []TranscriberRate
}

func (r *MemoryRepo) ListModelRates(ctx context.Context, scope int64) ([]ModelRate, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []ModelRate
	for _, m := range r.Models {
		if m.Scope == scope {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *MemoryRepo) ListTranscriberRates(ctx context.Context, scope int64) ([]TranscriberRate, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []TranscriberRate
	for _, t := range r.Transcribers {
		if t.Scope == scope {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *MemoryRepo) UpsertModelRates(ctx context.Context, scope int64, in []ModelRateInput) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	for _, e := range in {
		r.upsertModelLocked(ModelRate{Provider: e.Provider, Model: e.Model, Scope: scope, RatePerMinute: e.Rate, UpdatedAt: now}, true)
	}
	return nil
}

func (r *MemoryRepo) UpsertTranscriberRates(ctx context.Context, scope int64, in []TranscriberRateInput) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	for _, e := range in {
		r.upsertTranscriberLocked(TranscriberRate{Provider: e.Provider, Scope: scope, RatePerMinute: e.Rate, UpdatedAt: now}, true)
	}
	return nil
}

func (r *MemoryRepo) HasGlobalRates(ctx context.Context) (bool, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.Models {
		if m.Scope == GlobalScope {
			return true, nil
		}
	}
	return false, nil
}

func (r *MemoryRepo) SeedGlobalDefaults(ctx context.Context, models []ModelRateInput, transcribers []TranscriberRateInput) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	for _, e := range models {
		r.upsertModelLocked(ModelRate{Provider: e.Provider, Model: e.Model, Scope: GlobalScope, RatePerMinute: e.Rate, UpdatedAt: now}, false)
	}
	for _, e := range transcribers {
		r.upsertTranscriberLocked(TranscriberRate{Provider: e.Provider, Scope: GlobalScope, RatePerMinute: e.Rate, UpdatedAt: now}, false)
	}
	return nil
}

func (r *MemoryRepo) upsertModelLocked(m ModelRate, overwrite bool) {
	for i, existing := range r.Models {
		if existing.Provider == m.Provider && existing.Model == m.Model && existing.Scope == m.Scope {
			if overwrite {
				r.Models[i] = m
			}
			return
		}
	}
	r.Models = append(r.Models, m)
}

func (r *MemoryRepo) upsertTranscriberLocked(t TranscriberRate, overwrite bool) {
	for i, existing := range r.Transcribers {
		if existing.Provider == t.Provider && existing.Scope == t.Scope {
			if overwrite {
				r.Transcribers[i] = t
			}
			return
		}
	}
	r.Transcribers = append(r.Transcribers, t)
}

package rates

import "context"

// ModelRateInput / TranscriberRateInput are administrative upsert payloads.
type ModelRateInput struct {
	Provider string  `json:"provider"`
	Model    string  `json:"model"`
	Rate     float64 `json:"rate"`
}

type TranscriberRateInput struct {
	Provider string  `json:"provider"`
	Rate     float64 `json:"rate"`
}

// Repository abstracts rate persistence.
//
// Upserts must be keyed on (provider, model, scope) / (provider, scope);
// SeedGlobalDefaults must skip rows that already exist so concurrent
// seeding is safe.
type Repository interface {
	ListModelRates(ctx context.Context, scope int64) ([]ModelRate, error)
	ListTranscriberRates(ctx context.Context, scope int64) ([]TranscriberRate, error)

	UpsertModelRates(ctx context.Context, scope int64, in []ModelRateInput) error
	UpsertTranscriberRates(ctx context.Context, scope int64, in []TranscriberRateInput) error

	HasGlobalRates(ctx context.Context) (bool, error)
	SeedGlobalDefaults(ctx context.Context, models []ModelRateInput, transcribers []TranscriberRateInput) error
}

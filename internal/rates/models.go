package rates

import "time"

// Rates are per-minute prices in the platform credit unit.
//
// Scope partitions the tables: scope 0 holds the global defaults set by the
// platform owner; scope N holds the overrides an agency (account id N) sets
// for everything beneath it in the account hierarchy. Rows are seeded once
// at global scope and only mutated by explicit administrative updates.
const GlobalScope int64 = 0

// Fallback rates used when only one side of the model/transcriber pair has
// a table entry. Distinct on purpose; do not merge.
const (
	DefaultModelRate       = 0.08
	DefaultTranscriberRate = 0.02
)

// Legacy flat per-minute defaults, used when an account has no stored flat
// rates and no dynamic entry matches.
const (
	DefaultOutboundRate = 0.10
	DefaultInboundRate  = 0.05
)

// ModelRate prices one (provider, model) pair at a scope.
type ModelRate struct {
	Provider      string    `json:"provider" db:"provider"`
	Model         string    `json:"model" db:"model"`
	Scope         int64     `json:"scope" db:"scope"`
	RatePerMinute float64   `json:"rate_per_minute" db:"rate_per_minute"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// TranscriberRate prices a transcriber provider at a scope.
type TranscriberRate struct {
	Provider      string    `json:"provider" db:"provider"`
	Scope         int64     `json:"scope" db:"scope"`
	RatePerMinute float64   `json:"rate_per_minute" db:"rate_per_minute"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// Resolved is the effective combined per-minute rate for one agent.
type Resolved struct {
	ModelRate       float64 `json:"model_rate"`
	TranscriberRate float64 `json:"transcriber_rate"`
	TotalRate       float64 `json:"total_rate"`
}

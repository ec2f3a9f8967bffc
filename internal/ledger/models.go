package ledger

import (
	"encoding/json"
	"time"

	"voiceagent-platform/internal/calls"
)

// Entry is one row of the call ledger. ExternalCallID is unique; the same
// upstream call arriving over both the webhook and the poll path lands on
// a single row.
//
// Billing invariant: an entry counts as settled only when Billed is true
// AND CostCharged is positive. Zero-cost rows may be picked up again after
// a rate fix.
type Entry struct {
	ID             string          `json:"id"`
	ExternalCallID string          `json:"external_call_id"`
	AccountID      int64           `json:"account_id"`
	AgentID        *int64          `json:"agent_id,omitempty"`
	Direction      calls.Direction `json:"direction"`

	DurationSeconds float64 `json:"duration_seconds"`
	CostCharged     float64 `json:"cost_charged"`
	Billed          bool    `json:"billed"`

	Outcome        calls.Outcome   `json:"outcome"`
	EndedReason    string          `json:"ended_reason,omitempty"`
	CustomerNumber string          `json:"customer_number,omitempty"`
	Summary        string          `json:"summary,omitempty"`
	Transcript     string          `json:"transcript,omitempty"`
	StructuredData json.RawMessage `json:"structured_data,omitempty"`
	RecordingURL   string          `json:"recording_url,omitempty"`

	StartedAt *time.Time `json:"started_at,omitempty"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Settled reports whether the entry has been charged and must not be
// billed again.
func (e *Entry) Settled() bool {
	return e.Billed && e.CostCharged > 0
}

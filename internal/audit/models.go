package audit

import "time"

// Event is an immutable, append-only audit log record.
//
// Invariants:
//   - Events are never updated or deleted.
//   - Actor and ip capture are best-effort; do not block critical flows on
//     audit failures.
type Event struct {
	ID string `json:"id" db:"id"`

	// Type indicates the business category of the audit record.
	Type EventType `json:"type" db:"type"`

	// ActorAccountID is the authenticated account causing the event.
	ActorAccountID int64 `json:"actor_account_id" db:"actor_account_id"`
	// ActorRole is the role the actor held at the time.
	ActorRole string `json:"actor_role,omitempty" db:"actor_role"`

	// IPAddress should capture the original client IP when available.
	IPAddress string `json:"ip_address,omitempty" db:"ip_address"`

	// Target identifiers (optional, depending on the event type).
	TargetAccountID int64  `json:"target_account_id,omitempty" db:"target_account_id"`
	CallID          string `json:"call_id,omitempty" db:"call_id"`

	// Message is a short human-readable description for internal ops.
	Message string `json:"message,omitempty" db:"message"`

	// Metadata is optional JSON for full details.
	Metadata string `json:"metadata,omitempty" db:"metadata"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type EventType string

const (
	EventTypeRateUpdate       EventType = "rate_update"
	EventTypeCreditAdjustment EventType = "credit_adjustment"
	EventTypeOutcomeOverride  EventType = "outcome_override"
	EventTypeBillingSync      EventType = "billing_sync"
)

package accounts

import "time"

// Account is a tenant in the platform hierarchy: an owner account operates
// the platform, agency accounts resell under it, and client accounts hang
// off an agency (or directly off the owner).
//
// Account id 0 is reserved: it is the global rate scope sentinel and is
// never assigned to a row.
type Account struct {
	ID    int64  `json:"id" db:"id"`
	Email string `json:"email" db:"email"`
	Name  string `json:"name" db:"name"`

	// Role is one of the rbac role constants.
	Role string `json:"role" db:"role"`

	// AgencyID is the parent agency, nil for owner/agency accounts and for
	// clients attached directly to the owner.
	AgencyID *int64 `json:"agency_id,omitempty" db:"agency_id"`

	// Legacy flat per-minute rates, used only when no dynamic rate entry
	// exists for an agent's model/transcriber pair.
	OutboundRate float64 `json:"outbound_rate" db:"outbound_rate"`
	InboundRate  float64 `json:"inbound_rate" db:"inbound_rate"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// OverrideScope returns the rate scope that applies to this account:
// the parent agency id when there is one, otherwise the global scope 0.
func (a Account) OverrideScope() int64 {
	if a.AgencyID != nil && *a.AgencyID > 0 {
		return *a.AgencyID
	}
	return 0
}

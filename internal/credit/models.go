package credit

import "time"

// Balance is an account's credit position, in credits.
type Balance struct {
	AccountID int64     `json:"account_id"`
	Credits   float64   `json:"credits"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AdjustOp selects the manual adjustment mode.
type AdjustOp string

const (
	OpAdd      AdjustOp = "add"
	OpSubtract AdjustOp = "subtract"
	OpSet      AdjustOp = "set"
)

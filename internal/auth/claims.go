package auth

import "github.com/golang-jwt/jwt/v5"

type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Claims are the only supported JWT claims shape for this service.
// AccountID identifies the tenant account (owner, agency, or client) and is
// required on every token. Authorization decisions live in internal/rbac.
type Claims struct {
	jwt.RegisteredClaims

	AccountID int64     `json:"account_id"`
	Role      string    `json:"role"`
	TokenType TokenType `json:"token_type"`
}

package auth

import "github.com/golang-jwt/jwt/v5"

type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Claims are the only supported JWT claims shape for this service. The
// gateway is single-tenant: identity is just the operator role that was
// authenticated at login.
type Claims struct {
	jwt.RegisteredClaims

	Role      string    `json:"role"`
	TokenType TokenType `json:"token_type"`
}

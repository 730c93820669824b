package types

import (
	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims represents the claims carried by a mobile client's identity token.
// Issuers that predate the standard subject claim put the account in user_id.
type TokenClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id,omitempty"`
}

// Principal returns the authenticated subject identifier
func (c *TokenClaims) Principal() string {
	if c.Subject != "" {
		return c.Subject
	}
	return c.UserID
}

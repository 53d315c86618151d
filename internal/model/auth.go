package model

import (
	"github.com/google/uuid"
)

// TokenClaims is the authenticated identity carried by a bearer token.
type TokenClaims struct {
	UserID uuid.UUID `json:"user_id"`
	Role   string    `json:"role"`
}

// IsAdmin reports whether the caller bypasses owner scoping.
func (c TokenClaims) IsAdmin() bool {
	return c.Role == RoleAdmin
}

// TokenResponse is returned by signup and login.
type TokenResponse struct {
	Token string `json:"token"`
	Role  string `json:"role"`
}

// Package auth provides JWT-based authentication for dds-engine.
// It validates bearer tokens against JWKS endpoints and resolves the token
// subject to a stored user.
package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// UserKey is the context key for the resolved *models.User.
const UserKey contextKey = "user"

// Claims represents the JWT claims accepted by dds-engine.
// The subject is the user's external identifier (users.uuid).
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
}

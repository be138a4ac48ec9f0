package core

import (
	"slices"
	"time"
)

// Role is the authorization level attached to a user and carried in tokens.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Identity is a user as seen by the request pipeline: no secrets.
type Identity struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// HasRole reports whether the identity's role is in roles.
func (i Identity) HasRole(roles ...Role) bool {
	return slices.Contains(roles, i.Role)
}

// Claims is the verified content of a bearer token.
type Claims struct {
	ID        string    // jti
	Subject   string    // user id
	Role      Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Principal is what the authentication gate hands to downstream handlers:
// the resolved identity together with the credential that proved it.
type Principal struct {
	Identity  Identity
	Token     string
	TokenID   string
	ExpiresAt time.Time
}

// RemainingTTL returns how long the principal's token stays valid after now.
func (p Principal) RemainingTTL(now time.Time) time.Duration {
	return p.ExpiresAt.Sub(now)
}

package models

import "github.com/golang-jwt/jwt/v5"

// Roles carried in the "role" claim.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Claims is the JWT claim set issued by the identity provider.
type Claims struct {
	jwt.RegisteredClaims        // sub = user id
	Email                string `json:"email"`
	Name                 string `json:"name"`
	Role                 string `json:"role"` // "user" or "admin"
}

// GetUserID returns the user ID from the JWT subject claim.
func (c *Claims) GetUserID() string {
	return c.Subject
}

// IsAdmin reports whether the token carries the admin role.
func (c *Claims) IsAdmin() bool {
	return c.Role == RoleAdmin
}

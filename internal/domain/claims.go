package domain

import "github.com/golang-jwt/jwt/v5"

const RoleAdmin = "admin"

// Claims representa o payload do JWT aceito pela API
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

func (c *Claims) IsAdmin() bool {
	return c != nil && c.Role == RoleAdmin
}

package models

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AdminClaims are the JWT claims carried by the admin HTTP API's bearer
// tokens: enough to authorize the admin actions in internal/httpapi
// (force-abort, force-release, extended-config registration) without a
// full user/tenant model, since the core has no concept of tenancy.
type AdminClaims struct {
	AdminID     uuid.UUID `json:"admin_id"`
	Role        string    `json:"role"`
	Permissions []string  `json:"permissions"`
	jwt.RegisteredClaims
}

// AdminContext is the request-scoped identity extracted from a verified
// AdminClaims, attached to the request context by the auth middleware.
type AdminContext struct {
	AdminID     uuid.UUID
	Role        string
	Permissions []string
}

// Has reports whether the admin context carries permission p.
func (c AdminContext) Has(p string) bool {
	for _, have := range c.Permissions {
		if have == p {
			return true
		}
	}
	return false
}

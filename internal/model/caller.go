package model

import "github.com/google/uuid"

// Role names understood by the scheduling engine. Credential verification is the
// identity collaborator's job; the engine only evaluates ownership and roles.
const (
	RoleAdmin    = "ADMIN"
	RoleProvider = "PROVIDER"
	RoleClient   = "CLIENT"
)

// Caller is the already-authenticated identity attached to a request.
type Caller struct {
	UserID uuid.UUID `json:"user_id"`
	Roles  []string  `json:"roles"`
}

func (c Caller) HasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func (c Caller) IsAdmin() bool {
	return c.HasRole(RoleAdmin)
}

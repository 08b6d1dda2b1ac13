package facade

import (
	"healthcare-ai-server/internal/models"
)

// Capability describes what a caller may do, resolved once per request instead
// of re-testing the role string inside every operation. Elevated callers (admin
// and staff) may name an explicit target patient; everyone else is scoped to
// the patient profile owned by their own user id.
type Capability struct {
	UserID   string
	Role     models.Role
	Elevated bool
}

// NewCapability builds the capability descriptor for a caller.
func NewCapability(userID string, role models.Role) Capability {
	return Capability{
		UserID:   userID,
		Role:     role,
		Elevated: role.Elevated(),
	}
}

package identity

import (
	"time"

	"github.com/atelier-commerce/atelier/internal/authz"
)

// Account represents a marketplace account of any role.
type Account struct {
	ID           int64
	Email        string
	Name         string
	PasswordHash string
	Role         authz.Role
	Verified     bool
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Claim converts the account into the identity claim embedded in sessions.
func (a *Account) Claim() authz.Claim {
	return authz.Claim{SubjectID: a.ID, Role: a.Role, Verified: a.Verified}
}

package users

import (
	"time"

	"github.com/atelier-commerce/atelier/internal/authz"
)

// User is the admin-facing view of an account.
type User struct {
	ID        int64      `json:"id"`
	Email     string     `json:"email"`
	Name      string     `json:"name"`
	Role      authz.Role `json:"-"`
	RoleName  string     `json:"role"`
	Verified  bool       `json:"verified"`
	IsActive  bool       `json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type UpdateUserRequest struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,max=120"`
	IsActive *bool   `json:"is_active,omitempty"`
}

type ListUsersRequest struct {
	Role   *authz.Role
	Search string
	Limit  int
	Offset int
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// User is an authenticated identity. UUID is the external identifier
// carried as the token subject; ID is the internal primary key.
type User struct {
	ID        uuid.UUID `json:"id"`
	UUID      string    `json:"uuid"`
	Etag      string    `json:"etag"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	AuthRoles []string  `json:"auth_roles"`
	CreatedAt time.Time `json:"created_at"`
}

// HasAuthRole reports whether the user holds the given global role.
func (u *User) HasAuthRole(role string) bool {
	for _, r := range u.AuthRoles {
		if r == role {
			return true
		}
	}
	return false
}

// IsSystemAdmin reports whether the user holds the system_admin global role.
func (u *User) IsSystemAdmin() bool {
	return u.HasAuthRole(RoleSystemAdmin)
}

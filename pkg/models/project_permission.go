package models

import (
	"time"

	"github.com/google/uuid"
)

// ProjectPermission is the role a user holds on a project.
// At most one exists per (ProjectID, UserID).
type ProjectPermission struct {
	ProjectID  uuid.UUID `json:"project_id"`
	UserID     uuid.UUID `json:"user_id"`
	AuthRoleID string    `json:"auth_role"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// User is populated by reads that join the users table.
	User *User `json:"-"`
}

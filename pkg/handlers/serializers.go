package handlers

import (
	"time"

	"github.com/duke-dds/dds-engine/pkg/models"
)

// AuditResponse carries the timestamps of a serialized record.
type AuditResponse struct {
	CreatedOn     time.Time `json:"created_on"`
	LastUpdatedOn time.Time `json:"last_updated_on"`
}

// ProjectResponse is the serialized form of a project.
type ProjectResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	PIAffiliate models.JSONBMap `json:"pi_affiliate"`
	CreatorID   string          `json:"creator_id"`
	IsDeleted   bool            `json:"is_deleted"`
	Audit       AuditResponse   `json:"audit"`
}

func toProjectResponse(p *models.Project) ProjectResponse {
	return ProjectResponse{
		ID:          p.ID.String(),
		Name:        p.Name,
		Description: p.Description,
		PIAffiliate: p.PIAffiliate,
		CreatorID:   p.CreatorID.String(),
		IsDeleted:   p.IsDeleted(),
		Audit: AuditResponse{
			CreatedOn:     p.CreatedAt,
			LastUpdatedOn: p.UpdatedAt,
		},
	}
}

// UserResponse is the serialized form of a user.
type UserResponse struct {
	ID    string `json:"id"`
	UUID  string `json:"uuid"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// CurrentUserResponse adds the caller's global roles and etag.
type CurrentUserResponse struct {
	UserResponse
	Etag      string   `json:"etag"`
	AuthRoles []string `json:"auth_roles"`
}

func toUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:    u.ID.String(),
		UUID:  u.UUID,
		Email: u.Email,
		Name:  u.Name,
	}
}

// ProjectRef identifies the project a permission belongs to.
type ProjectRef struct {
	ID string `json:"id"`
}

// AuthRoleResponse is the serialized form of a role.
type AuthRoleResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Permissions []models.Action `json:"permissions"`
}

func toAuthRoleResponse(r *models.AuthRole) AuthRoleResponse {
	perms := r.Permissions
	if perms == nil {
		perms = []models.Action{}
	}
	return AuthRoleResponse{
		ID:          r.TextID,
		Name:        r.Name,
		Description: r.Description,
		Permissions: perms,
	}
}

// PermissionResponse is the serialized form of a project permission.
type PermissionResponse struct {
	Project  ProjectRef       `json:"project"`
	User     UserResponse     `json:"user"`
	AuthRole AuthRoleResponse `json:"auth_role"`
}

// toPermissionResponse resolves the role through catalog. A role missing
// from the registry is still serialized by id.
func toPermissionResponse(p *models.ProjectPermission, catalog RoleCatalog) PermissionResponse {
	user := UserResponse{ID: p.UserID.String()}
	if p.User != nil {
		user = toUserResponse(p.User)
	}

	role := AuthRoleResponse{ID: p.AuthRoleID, Permissions: []models.Action{}}
	if r, ok := catalog.Get(p.AuthRoleID); ok {
		role = toAuthRoleResponse(r)
	}

	return PermissionResponse{
		Project:  ProjectRef{ID: p.ProjectID.String()},
		User:     user,
		AuthRole: role,
	}
}

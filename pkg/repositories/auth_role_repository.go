package repositories

import (
	"context"
	"fmt"

	"github.com/duke-dds/dds-engine/pkg/database"
	"github.com/duke-dds/dds-engine/pkg/models"
)

// AuthRoleRepository mirrors the role registry into the auth_roles table,
// which project_permissions references.
type AuthRoleRepository interface {
	// Sync upserts every role. Roles absent from the input are left in place
	// since existing grants may still reference them.
	Sync(ctx context.Context, roles []*models.AuthRole) error
}

type authRoleRepository struct{}

// NewAuthRoleRepository creates a new auth role repository.
func NewAuthRoleRepository() AuthRoleRepository {
	return &authRoleRepository{}
}

func (r *authRoleRepository) Sync(ctx context.Context, roles []*models.AuthRole) error {
	q, err := database.QuerierFromContext(ctx)
	if err != nil {
		return err
	}

	for _, role := range roles {
		permissions := make([]string, len(role.Permissions))
		for i, a := range role.Permissions {
			permissions[i] = string(a)
		}

		_, err := q.Exec(ctx, `
			INSERT INTO auth_roles (text_id, name, description, permissions, contexts, updated_at)
			VALUES ($1, $2, $3, $4, $5, now())
			ON CONFLICT (text_id) DO UPDATE
			SET name = EXCLUDED.name,
			    description = EXCLUDED.description,
			    permissions = EXCLUDED.permissions,
			    contexts = EXCLUDED.contexts,
			    updated_at = EXCLUDED.updated_at`,
			role.TextID,
			role.Name,
			role.Description,
			permissions,
			role.Contexts,
		)
		if err != nil {
			return fmt.Errorf("failed to sync role %s: %w", role.TextID, err)
		}
	}

	return nil
}

// Ensure authRoleRepository implements AuthRoleRepository at compile time.
var _ AuthRoleRepository = (*authRoleRepository)(nil)

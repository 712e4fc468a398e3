package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/duke-dds/dds-engine/pkg/apperrors"
	"github.com/duke-dds/dds-engine/pkg/database"
	"github.com/duke-dds/dds-engine/pkg/models"
)

// PermissionRepository defines data access for project permissions.
// Reads populate ProjectPermission.User.
type PermissionRepository interface {
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]*models.ProjectPermission, error)
	Get(ctx context.Context, projectID, userID uuid.UUID) (*models.ProjectPermission, error)
	// Upsert creates the grant or replaces its role, reporting whether a row was created.
	Upsert(ctx context.Context, perm *models.ProjectPermission) (bool, error)
	Delete(ctx context.Context, projectID, userID uuid.UUID) error
}

// permissionRepository implements PermissionRepository using PostgreSQL.
type permissionRepository struct{}

// NewPermissionRepository creates a new permission repository.
func NewPermissionRepository() PermissionRepository {
	return &permissionRepository{}
}

const permissionSelect = `
	SELECT p.project_id, p.user_id, p.auth_role_id, p.created_at, p.updated_at,
	       u.id, u.uuid, u.etag, u.email, u.name, u.auth_roles, u.created_at
	FROM project_permissions p
	JOIN users u ON u.id = p.user_id`

func (r *permissionRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*models.ProjectPermission, error) {
	q, err := database.QuerierFromContext(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := q.Query(ctx, permissionSelect+`
		WHERE p.project_id = $1
		ORDER BY p.created_at, u.uuid`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list permissions: %w", err)
	}
	defer rows.Close()

	perms := make([]*models.ProjectPermission, 0)
	for rows.Next() {
		perm, err := scanPermission(rows)
		if err != nil {
			return nil, err
		}
		perms = append(perms, perm)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate permissions: %w", err)
	}

	return perms, nil
}

func (r *permissionRepository) Get(ctx context.Context, projectID, userID uuid.UUID) (*models.ProjectPermission, error) {
	q, err := database.QuerierFromContext(ctx)
	if err != nil {
		return nil, err
	}

	row := q.QueryRow(ctx, permissionSelect+`
		WHERE p.project_id = $1 AND p.user_id = $2`, projectID, userID)
	return scanPermission(row)
}

// Upsert relies on the (project_id, user_id) primary key so concurrent grants
// for the same pair converge on one row. xmax is zero only for freshly inserted tuples.
func (r *permissionRepository) Upsert(ctx context.Context, perm *models.ProjectPermission) (bool, error) {
	q, err := database.QuerierFromContext(ctx)
	if err != nil {
		return false, err
	}

	now := time.Now().UTC()
	var created bool

	err = q.QueryRow(ctx, `
		INSERT INTO project_permissions (project_id, user_id, auth_role_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (project_id, user_id) DO UPDATE
		SET auth_role_id = EXCLUDED.auth_role_id,
		    updated_at = EXCLUDED.updated_at
		RETURNING created_at, updated_at, (xmax = 0) AS created`,
		perm.ProjectID,
		perm.UserID,
		perm.AuthRoleID,
		now,
	).Scan(&perm.CreatedAt, &perm.UpdatedAt, &created)
	if err != nil {
		return false, wrapError("upsert permission", err)
	}

	return created, nil
}

func (r *permissionRepository) Delete(ctx context.Context, projectID, userID uuid.UUID) error {
	q, err := database.QuerierFromContext(ctx)
	if err != nil {
		return err
	}

	tag, err := q.Exec(ctx, `
		DELETE FROM project_permissions
		WHERE project_id = $1 AND user_id = $2`, projectID, userID)
	if err != nil {
		return wrapError("delete permission", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

func scanPermission(row pgx.Row) (*models.ProjectPermission, error) {
	var perm models.ProjectPermission
	var user models.User

	err := row.Scan(
		&perm.ProjectID,
		&perm.UserID,
		&perm.AuthRoleID,
		&perm.CreatedAt,
		&perm.UpdatedAt,
		&user.ID,
		&user.UUID,
		&user.Etag,
		&user.Email,
		&user.Name,
		&user.AuthRoles,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, wrapError("scan permission", err)
	}

	perm.User = &user
	return &perm, nil
}

// Ensure permissionRepository implements PermissionRepository at compile time.
var _ PermissionRepository = (*permissionRepository)(nil)

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

// ProjectRepository defines the interface for project data access.
type ProjectRepository interface {
	// List returns active projects in creation order.
	List(ctx context.Context) ([]*models.Project, error)
	Create(ctx context.Context, project *models.Project) error
	// Get returns the project regardless of state.
	Get(ctx context.Context, id uuid.UUID) (*models.Project, error)
	Update(ctx context.Context, project *models.Project) error
	// SoftDelete marks the project deleted. Deleting a deleted project succeeds.
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

// projectRepository implements ProjectRepository using PostgreSQL.
type projectRepository struct{}

// NewProjectRepository creates a new project repository.
func NewProjectRepository() ProjectRepository {
	return &projectRepository{}
}

const projectColumns = `id, name, description, pi_affiliate, creator_id, state, created_at, updated_at`

func (r *projectRepository) List(ctx context.Context) ([]*models.Project, error) {
	q, err := database.QuerierFromContext(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := q.Query(ctx, `
		SELECT `+projectColumns+`
		FROM projects
		WHERE state = 'active'
		ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	projects := make([]*models.Project, 0)
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, project)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate projects: %w", err)
	}

	return projects, nil
}

// Create inserts a new active project. ID and timestamps are assigned here.
func (r *projectRepository) Create(ctx context.Context, project *models.Project) error {
	q, err := database.QuerierFromContext(ctx)
	if err != nil {
		return err
	}

	if project.ID == uuid.Nil {
		project.ID = uuid.New()
	}
	now := time.Now().UTC()
	project.CreatedAt = now
	project.UpdatedAt = now
	project.State = models.ProjectStateActive
	if project.PIAffiliate == nil {
		project.PIAffiliate = models.JSONBMap{}
	}

	_, err = q.Exec(ctx, `
		INSERT INTO projects (id, name, description, pi_affiliate, creator_id, state, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		project.ID,
		project.Name,
		project.Description,
		project.PIAffiliate,
		project.CreatorID,
		project.State,
		project.CreatedAt,
		project.UpdatedAt,
	)
	if err != nil {
		return wrapError("create project", err)
	}

	return nil
}

func (r *projectRepository) Get(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	q, err := database.QuerierFromContext(ctx)
	if err != nil {
		return nil, err
	}

	row := q.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id)
	project, err := scanProject(row)
	if err != nil {
		return nil, err
	}
	return project, nil
}

// Update persists name and description. Other attributes are immutable here.
func (r *projectRepository) Update(ctx context.Context, project *models.Project) error {
	q, err := database.QuerierFromContext(ctx)
	if err != nil {
		return err
	}

	project.UpdatedAt = time.Now().UTC()

	tag, err := q.Exec(ctx, `
		UPDATE projects
		SET name = $2, description = $3, updated_at = $4
		WHERE id = $1`,
		project.ID,
		project.Name,
		project.Description,
		project.UpdatedAt,
	)
	if err != nil {
		return wrapError("update project", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

func (r *projectRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	q, err := database.QuerierFromContext(ctx)
	if err != nil {
		return err
	}

	tag, err := q.Exec(ctx, `
		UPDATE projects
		SET state = 'deleted', updated_at = $2
		WHERE id = $1 AND state = 'active'`,
		id, time.Now().UTC())
	if err != nil {
		return wrapError("delete project", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	// Nothing changed: either already deleted or never existed.
	var exists bool
	if err := q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM projects WHERE id = $1)`, id).Scan(&exists); err != nil {
		return wrapError("check project", err)
	}
	if !exists {
		return apperrors.ErrNotFound
	}
	return nil
}

func scanProject(row pgx.Row) (*models.Project, error) {
	var project models.Project

	// pi_affiliate goes through JSONBMap's sql.Scanner.
	err := row.Scan(
		&project.ID,
		&project.Name,
		&project.Description,
		&project.PIAffiliate,
		&project.CreatorID,
		&project.State,
		&project.CreatedAt,
		&project.UpdatedAt,
	)
	if err != nil {
		return nil, wrapError("scan project", err)
	}
	if project.PIAffiliate == nil {
		project.PIAffiliate = models.JSONBMap{}
	}

	return &project, nil
}

// Ensure projectRepository implements ProjectRepository at compile time.
var _ ProjectRepository = (*projectRepository)(nil)

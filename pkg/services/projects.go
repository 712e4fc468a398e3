package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/duke-dds/dds-engine/pkg/apperrors"
	"github.com/duke-dds/dds-engine/pkg/authz"
	"github.com/duke-dds/dds-engine/pkg/database"
	"github.com/duke-dds/dds-engine/pkg/models"
	"github.com/duke-dds/dds-engine/pkg/repositories"
	"github.com/duke-dds/dds-engine/pkg/roles"
)

// CreateProjectInput is the payload for creating a project.
type CreateProjectInput struct {
	Name        string          `json:"name" validate:"required,max=255"`
	Description string          `json:"description" validate:"required"`
	PIAffiliate models.JSONBMap `json:"pi_affiliate"`
}

// UpdateProjectInput replaces a project's name and description.
type UpdateProjectInput struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description" validate:"required"`
}

// ProjectService defines the interface for project operations.
// Every method that takes an actor authorizes it inside the same
// transaction as the read or write it guards.
type ProjectService interface {
	// List returns active projects in creation order.
	List(ctx context.Context, actor *models.User) ([]*models.Project, error)
	// Create persists a project owned by actor and grants actor project_admin on it.
	Create(ctx context.Context, actor *models.User, input CreateProjectInput) (*models.Project, error)
	Get(ctx context.Context, actor *models.User, id uuid.UUID) (*models.Project, error)
	Update(ctx context.Context, actor *models.User, id uuid.UUID, input UpdateProjectInput) (*models.Project, error)
	// Delete soft-deletes the project. Deleting a deleted project succeeds.
	Delete(ctx context.Context, actor *models.User, id uuid.UUID) error
}

// projectService implements ProjectService.
type projectService struct {
	access      projectAccess
	projects    repositories.ProjectRepository
	permissions repositories.PermissionRepository
	tx          database.TxManager
	validate    *validator.Validate
	logger      *zap.Logger
}

// NewProjectService creates a new project service with dependencies.
func NewProjectService(
	projects repositories.ProjectRepository,
	permissions repositories.PermissionRepository,
	gate authz.Gate,
	registry *roles.Registry,
	tx database.TxManager,
	logger *zap.Logger,
) ProjectService {
	return &projectService{
		access:      projectAccess{projects: projects, gate: gate},
		projects:    projects,
		permissions: permissions,
		tx:          tx,
		validate:    newValidator(registry),
		logger:      logger.Named("projects"),
	}
}

func (s *projectService) List(ctx context.Context, actor *models.User) ([]*models.Project, error) {
	if actor == nil {
		return nil, apperrors.ErrUnauthenticated
	}
	return s.projects.List(ctx)
}

func (s *projectService) Create(ctx context.Context, actor *models.User, input CreateProjectInput) (*models.Project, error) {
	if actor == nil {
		return nil, apperrors.ErrUnauthenticated
	}

	input.Name = strings.TrimSpace(input.Name)
	input.Description = strings.TrimSpace(input.Description)
	if err := checkInput(s.validate, input); err != nil {
		return nil, err
	}

	project := &models.Project{
		Name:        input.Name,
		Description: input.Description,
		PIAffiliate: input.PIAffiliate,
		CreatorID:   actor.ID,
	}

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.projects.Create(ctx, project); err != nil {
			return err
		}
		_, err := s.permissions.Upsert(ctx, &models.ProjectPermission{
			ProjectID:  project.ID,
			UserID:     actor.ID,
			AuthRoleID: models.RoleProjectAdmin,
		})
		if err != nil {
			return fmt.Errorf("failed to grant creator access: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Project created",
		zap.String("project_id", project.ID.String()),
		zap.String("creator_id", actor.ID.String()))
	return project, nil
}

func (s *projectService) Get(ctx context.Context, actor *models.User, id uuid.UUID) (*models.Project, error) {
	var project *models.Project
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		project, err = s.access.authorize(ctx, actor, id, models.ActionViewProject, false)
		return err
	})
	if err != nil {
		return nil, err
	}
	return project, nil
}

func (s *projectService) Update(ctx context.Context, actor *models.User, id uuid.UUID, input UpdateProjectInput) (*models.Project, error) {
	if actor == nil {
		return nil, apperrors.ErrUnauthenticated
	}

	input.Name = strings.TrimSpace(input.Name)
	input.Description = strings.TrimSpace(input.Description)
	if err := checkInput(s.validate, input); err != nil {
		return nil, err
	}

	var project *models.Project
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		project, err = s.access.authorize(ctx, actor, id, models.ActionUpdateProject, false)
		if err != nil {
			return err
		}

		project.Name = input.Name
		project.Description = input.Description
		return s.projects.Update(ctx, project)
	})
	if err != nil {
		return nil, err
	}

	return project, nil
}

func (s *projectService) Delete(ctx context.Context, actor *models.User, id uuid.UUID) error {
	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		project, err := s.access.authorize(ctx, actor, id, models.ActionDeleteProject, true)
		if err != nil {
			return err
		}
		if project.IsDeleted() {
			return nil
		}

		if err := s.projects.SoftDelete(ctx, id); err != nil {
			return err
		}

		s.logger.Info("Project deleted",
			zap.String("project_id", id.String()),
			zap.String("actor_id", actor.ID.String()))
		return nil
	})
}

// Ensure projectService implements ProjectService at compile time.
var _ ProjectService = (*projectService)(nil)

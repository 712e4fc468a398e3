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

// GrantInput is the payload for granting or changing a user's role on a project.
type GrantInput struct {
	AuthRole string `json:"auth_role" validate:"required,project_role"`
}

// GrantResult is a stored grant and whether this call created it.
type GrantResult struct {
	Permission *models.ProjectPermission
	Created    bool
}

// PermissionService defines the interface for project permission operations.
type PermissionService interface {
	List(ctx context.Context, actor *models.User, projectID uuid.UUID) ([]*models.ProjectPermission, error)
	// Grant creates the (project, user) grant or replaces its role.
	Grant(ctx context.Context, actor *models.User, projectID, userID uuid.UUID, input GrantInput) (*GrantResult, error)
	Get(ctx context.Context, actor *models.User, projectID, userID uuid.UUID) (*models.ProjectPermission, error)
	// Revoke deletes the grant. A missing grant is apperrors.ErrNotFound.
	Revoke(ctx context.Context, actor *models.User, projectID, userID uuid.UUID) error
}

// permissionService implements PermissionService.
type permissionService struct {
	access      projectAccess
	permissions repositories.PermissionRepository
	users       repositories.UserRepository
	tx          database.TxManager
	validate    *validator.Validate
	logger      *zap.Logger
}

// NewPermissionService creates a new permission service with dependencies.
func NewPermissionService(
	projects repositories.ProjectRepository,
	permissions repositories.PermissionRepository,
	users repositories.UserRepository,
	gate authz.Gate,
	registry *roles.Registry,
	tx database.TxManager,
	logger *zap.Logger,
) PermissionService {
	return &permissionService{
		access:      projectAccess{projects: projects, gate: gate},
		permissions: permissions,
		users:       users,
		tx:          tx,
		validate:    newValidator(registry),
		logger:      logger.Named("permissions"),
	}
}

func (s *permissionService) List(ctx context.Context, actor *models.User, projectID uuid.UUID) ([]*models.ProjectPermission, error) {
	var perms []*models.ProjectPermission
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.access.authorize(ctx, actor, projectID, models.ActionListProjectPermissions, false); err != nil {
			return err
		}

		var err error
		perms, err = s.permissions.ListByProject(ctx, projectID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return perms, nil
}

func (s *permissionService) Grant(ctx context.Context, actor *models.User, projectID, userID uuid.UUID, input GrantInput) (*GrantResult, error) {
	if actor == nil {
		return nil, apperrors.ErrUnauthenticated
	}

	input.AuthRole = strings.TrimSpace(input.AuthRole)
	if err := checkInput(s.validate, input); err != nil {
		return nil, err
	}

	var result *GrantResult
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.access.authorize(ctx, actor, projectID, models.ActionManageProjectPermissions, false); err != nil {
			return err
		}

		user, err := s.users.GetByID(ctx, userID)
		if err != nil {
			return fmt.Errorf("user %s: %w", userID, err)
		}

		perm := &models.ProjectPermission{
			ProjectID:  projectID,
			UserID:     userID,
			AuthRoleID: input.AuthRole,
			User:       user,
		}
		created, err := s.permissions.Upsert(ctx, perm)
		if err != nil {
			return err
		}

		result = &GrantResult{Permission: perm, Created: created}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Permission granted",
		zap.String("project_id", projectID.String()),
		zap.String("user_id", userID.String()),
		zap.String("auth_role", input.AuthRole),
		zap.Bool("created", result.Created),
		zap.String("actor_id", actor.ID.String()))
	return result, nil
}

func (s *permissionService) Get(ctx context.Context, actor *models.User, projectID, userID uuid.UUID) (*models.ProjectPermission, error) {
	var perm *models.ProjectPermission
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.access.authorize(ctx, actor, projectID, models.ActionViewProjectPermission, false); err != nil {
			return err
		}

		var err error
		perm, err = s.permissions.Get(ctx, projectID, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return perm, nil
}

func (s *permissionService) Revoke(ctx context.Context, actor *models.User, projectID, userID uuid.UUID) error {
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.access.authorize(ctx, actor, projectID, models.ActionManageProjectPermissions, false); err != nil {
			return err
		}
		return s.permissions.Delete(ctx, projectID, userID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("Permission revoked",
		zap.String("project_id", projectID.String()),
		zap.String("user_id", userID.String()),
		zap.String("actor_id", actor.ID.String()))
	return nil
}

// Ensure permissionService implements PermissionService at compile time.
var _ PermissionService = (*permissionService)(nil)

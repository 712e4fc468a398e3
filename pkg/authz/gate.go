// Package authz decides whether a user may perform an action on a project.
package authz

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/duke-dds/dds-engine/pkg/apperrors"
	"github.com/duke-dds/dds-engine/pkg/models"
)

// PermissionLookup finds the grant a user holds on a project.
// It returns apperrors.ErrNotFound when there is none.
type PermissionLookup interface {
	Get(ctx context.Context, projectID, userID uuid.UUID) (*models.ProjectPermission, error)
}

// RoleTable answers whether a role permits an action.
type RoleTable interface {
	Allows(roleID string, action models.Action) bool
}

// Gate authorizes project-scoped actions. It never mutates state.
type Gate interface {
	// Authorize returns nil when allowed, an error wrapping apperrors.ErrForbidden
	// when denied, and any other error when the decision could not be made.
	Authorize(ctx context.Context, user *models.User, action models.Action, projectID uuid.UUID) error
}

type gate struct {
	permissions PermissionLookup
	roles       RoleTable
	metrics     *Metrics
	logger      *zap.Logger
}

// NewGate creates a Gate. metrics may be nil.
func NewGate(permissions PermissionLookup, roles RoleTable, metrics *Metrics, logger *zap.Logger) Gate {
	return &gate{
		permissions: permissions,
		roles:       roles,
		metrics:     metrics,
		logger:      logger.Named("authz"),
	}
}

func (g *gate) Authorize(ctx context.Context, user *models.User, action models.Action, projectID uuid.UUID) error {
	if user == nil {
		return apperrors.ErrUnauthenticated
	}
	if !models.IsKnownAction(action) {
		g.metrics.observe(string(action), OutcomeError)
		return fmt.Errorf("unknown action %q", action)
	}

	if user.IsSystemAdmin() {
		g.metrics.observe(string(action), OutcomeAllow)
		return nil
	}

	perm, err := g.permissions.Get(ctx, projectID, user.ID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return g.deny(user, action, projectID, "")
	}
	if err != nil {
		g.metrics.observe(string(action), OutcomeError)
		return fmt.Errorf("failed to load permission: %w", err)
	}

	if !g.roles.Allows(perm.AuthRoleID, action) {
		return g.deny(user, action, projectID, perm.AuthRoleID)
	}

	g.metrics.observe(string(action), OutcomeAllow)
	return nil
}

func (g *gate) deny(user *models.User, action models.Action, projectID uuid.UUID, role string) error {
	g.metrics.observe(string(action), OutcomeDeny)
	g.logger.Debug("Access denied",
		zap.String("user_id", user.ID.String()),
		zap.String("project_id", projectID.String()),
		zap.String("action", string(action)),
		zap.String("role", role))
	return fmt.Errorf("%s on project %s: %w", action, projectID, apperrors.ErrForbidden)
}

// Ensure gate implements Gate at compile time.
var _ Gate = (*gate)(nil)

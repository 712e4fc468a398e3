package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/duke-dds/dds-engine/pkg/apperrors"
	"github.com/duke-dds/dds-engine/pkg/authz"
	"github.com/duke-dds/dds-engine/pkg/models"
	"github.com/duke-dds/dds-engine/pkg/repositories"
)

// projectAccess loads projects and checks the caller against the gate.
type projectAccess struct {
	projects repositories.ProjectRepository
	gate     authz.Gate
}

// authorize returns the project when actor may perform action on it.
// Order: unknown project 404, denied 403, soft-deleted 404.
// With allowDeleted the last check is skipped so callers can treat
// deleted projects themselves.
func (a *projectAccess) authorize(ctx context.Context, actor *models.User, projectID uuid.UUID, action models.Action, allowDeleted bool) (*models.Project, error) {
	if actor == nil {
		return nil, apperrors.ErrUnauthenticated
	}

	project, err := a.projects.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}

	if err := a.gate.Authorize(ctx, actor, action, projectID); err != nil {
		return nil, err
	}

	if project.IsDeleted() && !allowDeleted {
		return nil, fmt.Errorf("project %s is deleted: %w", projectID, apperrors.ErrNotFound)
	}

	return project, nil
}

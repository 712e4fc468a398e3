//go:build integration

package repositories

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/duke-dds/dds-engine/pkg/database"
	"github.com/duke-dds/dds-engine/pkg/models"
	"github.com/duke-dds/dds-engine/pkg/testhelpers"
)

// repoTestContext holds test dependencies for repository tests.
type repoTestContext struct {
	t           *testing.T
	engineDB    *testhelpers.EngineDB
	projects    ProjectRepository
	permissions PermissionRepository
	users       UserRepository
	roles       AuthRoleRepository
}

// setupRepoTest initializes the test context with the shared testcontainer
// and empties the domain tables.
func setupRepoTest(t *testing.T) (*repoTestContext, context.Context) {
	t.Helper()

	engineDB := testhelpers.GetEngineDB(t)
	engineDB.Reset(t)

	return &repoTestContext{
		t:           t,
		engineDB:    engineDB,
		projects:    NewProjectRepository(),
		permissions: NewPermissionRepository(),
		users:       NewUserRepository(),
		roles:       NewAuthRoleRepository(),
	}, engineDB.Context(t)
}

func (tc *repoTestContext) createUser(ctx context.Context, subject string) *models.User {
	tc.t.Helper()

	user, err := tc.users.Provision(ctx, &models.User{
		UUID:  subject,
		Email: subject + "@example.edu",
		Name:  "User " + subject,
	})
	if err != nil {
		tc.t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

func (tc *repoTestContext) createProject(ctx context.Context, name string, creator *models.User) *models.Project {
	tc.t.Helper()

	project := &models.Project{
		Name:        name,
		Description: "Description of " + name,
		PIAffiliate: models.JSONBMap{"netid": "pi1"},
		CreatorID:   creator.ID,
	}
	if err := tc.projects.Create(ctx, project); err != nil {
		tc.t.Fatalf("failed to create test project: %v", err)
	}
	return project
}

func (tc *repoTestContext) grant(ctx context.Context, projectID, userID uuid.UUID, role string) {
	tc.t.Helper()

	_, err := tc.permissions.Upsert(ctx, &models.ProjectPermission{
		ProjectID:  projectID,
		UserID:     userID,
		AuthRoleID: role,
	})
	if err != nil {
		tc.t.Fatalf("failed to grant %s: %v", role, err)
	}
}

// listAuthRoles reads the auth_roles table as synced.
func (tc *repoTestContext) listAuthRoles(ctx context.Context) ([]*models.AuthRole, error) {
	q, err := database.QuerierFromContext(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := q.Query(ctx, `
		SELECT text_id, name, description, permissions, contexts
		FROM auth_roles
		ORDER BY text_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []*models.AuthRole
	for rows.Next() {
		var role models.AuthRole
		var permissions []string
		if err := rows.Scan(&role.TextID, &role.Name, &role.Description, &permissions, &role.Contexts); err != nil {
			return nil, err
		}
		for _, p := range permissions {
			role.Permissions = append(role.Permissions, models.Action(p))
		}
		roles = append(roles, &role)
	}
	return roles, rows.Err()
}

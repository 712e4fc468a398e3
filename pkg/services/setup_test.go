package services

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/duke-dds/dds-engine/pkg/authz"
	"github.com/duke-dds/dds-engine/pkg/models"
	"github.com/duke-dds/dds-engine/pkg/roles"
)

type serviceFixture struct {
	projects    *fakeProjects
	permissions *fakePermissions
	users       *fakeUsers
	tx          *fakeTx
	registry    *roles.Registry

	projectSvc    ProjectService
	permissionSvc PermissionService
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	registry, err := roles.Default()
	require.NoError(t, err)

	f := &serviceFixture{
		projects:    newFakeProjects(),
		permissions: newFakePermissions(),
		users:       newFakeUsers(),
		tx:          &fakeTx{},
		registry:    registry,
	}

	gate := authz.NewGate(f.permissions, registry, authz.NewMetrics(prometheus.NewRegistry()), zap.NewNop())
	f.projectSvc = NewProjectService(f.projects, f.permissions, gate, registry, f.tx, zap.NewNop())
	f.permissionSvc = NewPermissionService(f.projects, f.permissions, f.users, gate, registry, f.tx, zap.NewNop())
	return f
}

// project stores an active project and grants role to each member.
func (f *serviceFixture) project(role string, members ...*models.User) *models.Project {
	p := f.projects.add(&models.Project{Name: "Project", Description: "Desc"})
	for _, m := range members {
		f.permissions.perms[permKey{p.ID, m.ID}] = &models.ProjectPermission{
			ProjectID: p.ID, UserID: m.ID, AuthRoleID: role,
		}
	}
	return p
}

package services

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/duke-dds/dds-engine/pkg/apperrors"
	"github.com/duke-dds/dds-engine/pkg/models"
)

// fakeProjects is an in-memory ProjectRepository.
type fakeProjects struct {
	mu        sync.Mutex
	projects  map[uuid.UUID]*models.Project
	order     []uuid.UUID
	createErr error
	getErr    error
	updates   int
	deletes   int
}

func newFakeProjects() *fakeProjects {
	return &fakeProjects{projects: make(map[uuid.UUID]*models.Project)}
}

func (f *fakeProjects) add(p *models.Project) *models.Project {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.State == "" {
		p.State = models.ProjectStateActive
	}
	f.projects[p.ID] = p
	f.order = append(f.order, p.ID)
	return p
}

func (f *fakeProjects) List(ctx context.Context) ([]*models.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Project
	for _, id := range f.order {
		if p := f.projects[id]; !p.IsDeleted() {
			c := *p
			out = append(out, &c)
		}
	}
	return out, nil
}

func (f *fakeProjects) Create(ctx context.Context, project *models.Project) error {
	if f.createErr != nil {
		return f.createErr
	}
	project.State = models.ProjectStateActive
	f.add(project)
	return nil
}

func (f *fakeProjects) Get(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.projects[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	c := *p
	return &c, nil
}

func (f *fakeProjects) Update(ctx context.Context, project *models.Project) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.projects[project.ID]
	if !ok {
		return apperrors.ErrNotFound
	}
	p.Name = project.Name
	p.Description = project.Description
	f.updates++
	return nil
}

func (f *fakeProjects) SoftDelete(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.projects[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	p.State = models.ProjectStateDeleted
	f.deletes++
	return nil
}

type permKey struct {
	project uuid.UUID
	user    uuid.UUID
}

// fakePermissions is an in-memory PermissionRepository keyed like the
// project_permissions primary key.
type fakePermissions struct {
	mu        sync.Mutex
	perms     map[permKey]*models.ProjectPermission
	upsertErr error
}

func newFakePermissions() *fakePermissions {
	return &fakePermissions{perms: make(map[permKey]*models.ProjectPermission)}
}

func (f *fakePermissions) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*models.ProjectPermission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.ProjectPermission
	for k, p := range f.perms {
		if k.project == projectID {
			c := *p
			out = append(out, &c)
		}
	}
	return out, nil
}

func (f *fakePermissions) Get(ctx context.Context, projectID, userID uuid.UUID) (*models.ProjectPermission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.perms[permKey{projectID, userID}]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	c := *p
	return &c, nil
}

func (f *fakePermissions) Upsert(ctx context.Context, perm *models.ProjectPermission) (bool, error) {
	if f.upsertErr != nil {
		return false, f.upsertErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	key := permKey{perm.ProjectID, perm.UserID}
	existing, ok := f.perms[key]
	if ok {
		existing.AuthRoleID = perm.AuthRoleID
		return false, nil
	}
	c := *perm
	f.perms[key] = &c
	return true, nil
}

func (f *fakePermissions) Delete(ctx context.Context, projectID, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := permKey{projectID, userID}
	if _, ok := f.perms[key]; !ok {
		return apperrors.ErrNotFound
	}
	delete(f.perms, key)
	return nil
}

func (f *fakePermissions) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.perms)
}

// fakeUsers is an in-memory UserRepository.
type fakeUsers struct {
	mu    sync.Mutex
	users map[uuid.UUID]*models.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: make(map[uuid.UUID]*models.User)}
}

func (f *fakeUsers) add(email string, roles ...string) *models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := &models.User{ID: uuid.New(), UUID: uuid.NewString(), Email: email, AuthRoles: roles}
	f.users[u.ID] = u
	return u
}

func (f *fakeUsers) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) GetByUUID(ctx context.Context, subject string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.UUID == subject {
			return u, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (f *fakeUsers) Provision(ctx context.Context, user *models.User) (*models.User, error) {
	if existing, err := f.GetByUUID(ctx, user.UUID); err == nil {
		return existing, nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	user.ID = uuid.New()
	f.users[user.ID] = user
	return user, nil
}

// fakeTx runs fn directly and counts calls.
type fakeTx struct {
	calls atomic.Int32
}

func (f *fakeTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls.Add(1)
	return fn(ctx)
}

package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/duke-dds/dds-engine/pkg/apperrors"
	"github.com/duke-dds/dds-engine/pkg/auth"
	"github.com/duke-dds/dds-engine/pkg/models"
	"github.com/duke-dds/dds-engine/pkg/services"
)

// mockAuthService accepts "Bearer <subject>" and nothing else.
type mockAuthService struct{}

func (mockAuthService) ValidateRequest(r *http.Request) (*auth.Claims, error) {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || token == "" {
		return nil, auth.ErrMissingAuthorization
	}
	return &auth.Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: token}}, nil
}

// mockIdentityResolver maps subjects to users.
type mockIdentityResolver struct {
	users map[string]*models.User
}

func (m *mockIdentityResolver) Resolve(ctx context.Context, claims *auth.Claims) (*models.User, error) {
	u, ok := m.users[claims.Subject]
	if !ok {
		return nil, apperrors.ErrUnauthenticated
	}
	return u, nil
}

// testCaller is the user every authenticated test request resolves to.
var testCaller = &models.User{
	ID:        uuid.MustParse("6f1c1f8e-3b1a-4d0f-9c55-2b6f0f3a9d10"),
	UUID:      "caller-uuid",
	Etag:      "abc123",
	Email:     "caller@example.com",
	Name:      "Test Caller",
	AuthRoles: []string{},
}

func newTestAuthMiddleware() *auth.Middleware {
	resolver := &mockIdentityResolver{users: map[string]*models.User{testCaller.UUID: testCaller}}
	return auth.NewMiddleware(mockAuthService{}, resolver, zap.NewNop())
}

func authorize(r *http.Request) *http.Request {
	r.Header.Set("Authorization", "Bearer "+testCaller.UUID)
	return r
}

// mockProjectService records the last call and returns canned results.
type mockProjectService struct {
	projects []*models.Project
	project  *models.Project
	err      error

	gotActor  *models.User
	gotID     uuid.UUID
	gotCreate services.CreateProjectInput
	gotUpdate services.UpdateProjectInput
}

func (m *mockProjectService) List(ctx context.Context, actor *models.User) ([]*models.Project, error) {
	m.gotActor = actor
	return m.projects, m.err
}

func (m *mockProjectService) Create(ctx context.Context, actor *models.User, input services.CreateProjectInput) (*models.Project, error) {
	m.gotActor = actor
	m.gotCreate = input
	if m.err != nil {
		return nil, m.err
	}
	return m.project, nil
}

func (m *mockProjectService) Get(ctx context.Context, actor *models.User, id uuid.UUID) (*models.Project, error) {
	m.gotActor = actor
	m.gotID = id
	if m.err != nil {
		return nil, m.err
	}
	return m.project, nil
}

func (m *mockProjectService) Update(ctx context.Context, actor *models.User, id uuid.UUID, input services.UpdateProjectInput) (*models.Project, error) {
	m.gotActor = actor
	m.gotID = id
	m.gotUpdate = input
	if m.err != nil {
		return nil, m.err
	}
	return m.project, nil
}

func (m *mockProjectService) Delete(ctx context.Context, actor *models.User, id uuid.UUID) error {
	m.gotActor = actor
	m.gotID = id
	return m.err
}

// mockPermissionService records the last call and returns canned results.
type mockPermissionService struct {
	perms  []*models.ProjectPermission
	perm   *models.ProjectPermission
	result *services.GrantResult
	err    error

	gotProject uuid.UUID
	gotUser    uuid.UUID
	gotInput   services.GrantInput
	calls      int
}

func (m *mockPermissionService) List(ctx context.Context, actor *models.User, projectID uuid.UUID) ([]*models.ProjectPermission, error) {
	m.calls++
	m.gotProject = projectID
	return m.perms, m.err
}

func (m *mockPermissionService) Grant(ctx context.Context, actor *models.User, projectID, userID uuid.UUID, input services.GrantInput) (*services.GrantResult, error) {
	m.calls++
	m.gotProject = projectID
	m.gotUser = userID
	m.gotInput = input
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func (m *mockPermissionService) Get(ctx context.Context, actor *models.User, projectID, userID uuid.UUID) (*models.ProjectPermission, error) {
	m.calls++
	m.gotProject = projectID
	m.gotUser = userID
	if m.err != nil {
		return nil, m.err
	}
	return m.perm, nil
}

func (m *mockPermissionService) Revoke(ctx context.Context, actor *models.User, projectID, userID uuid.UUID) error {
	m.calls++
	m.gotProject = projectID
	m.gotUser = userID
	return m.err
}

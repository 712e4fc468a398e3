// Package roles holds the registry of named roles and the actions each one permits.
package roles

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/duke-dds/dds-engine/pkg/models"
)

//go:embed default_roles.yaml
var defaultRolesYAML []byte

type registryFile struct {
	Roles []models.AuthRole `yaml:"roles"`
}

// Registry is an immutable set of roles keyed by text id.
// Safe for concurrent use.
type Registry struct {
	roles map[string]*models.AuthRole
	order []string
}

// Default returns the built-in registry.
func Default() (*Registry, error) {
	return Parse(defaultRolesYAML)
}

// Load returns the registry from path, or the built-in one when path is empty.
func Load(path string) (*Registry, error) {
	if path == "" {
		return Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read roles file %s: %w", path, err)
	}

	reg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("invalid roles file %s: %w", path, err)
	}
	return reg, nil
}

// Parse builds a registry from YAML. Every role needs an id, at least one
// known context and only known actions. The roles the engine itself relies
// on (system_admin, project_admin) must be present.
func Parse(data []byte) (*Registry, error) {
	var f registryFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse roles: %w", err)
	}

	reg := &Registry{roles: make(map[string]*models.AuthRole, len(f.Roles))}
	for i := range f.Roles {
		role := f.Roles[i]
		if err := validateRole(&role); err != nil {
			return nil, err
		}
		if _, dup := reg.roles[role.TextID]; dup {
			return nil, fmt.Errorf("duplicate role %q", role.TextID)
		}
		if role.Permissions == nil {
			role.Permissions = []models.Action{}
		}
		reg.roles[role.TextID] = &role
		reg.order = append(reg.order, role.TextID)
	}

	for _, required := range []string{models.RoleSystemAdmin, models.RoleProjectAdmin} {
		if _, ok := reg.roles[required]; !ok {
			return nil, fmt.Errorf("required role %q is missing", required)
		}
	}
	if !reg.roles[models.RoleProjectAdmin].InContext(models.RoleContextProject) {
		return nil, fmt.Errorf("role %q must be usable in the project context", models.RoleProjectAdmin)
	}

	return reg, nil
}

func validateRole(role *models.AuthRole) error {
	if role.TextID == "" {
		return fmt.Errorf("role without id")
	}
	if role.Name == "" {
		role.Name = role.TextID
	}
	if len(role.Contexts) == 0 {
		return fmt.Errorf("role %q has no contexts", role.TextID)
	}
	for _, c := range role.Contexts {
		if c != models.RoleContextSystem && c != models.RoleContextProject {
			return fmt.Errorf("role %q has unknown context %q", role.TextID, c)
		}
	}
	for _, a := range role.Permissions {
		if !models.IsKnownAction(a) {
			return fmt.Errorf("role %q grants unknown action %q", role.TextID, a)
		}
	}
	return nil
}

// Get returns the role with the given text id.
func (r *Registry) Get(id string) (*models.AuthRole, bool) {
	role, ok := r.roles[id]
	return role, ok
}

// List returns all roles in declaration order.
func (r *Registry) List() []*models.AuthRole {
	out := make([]*models.AuthRole, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.roles[id])
	}
	return out
}

// ForContext returns the roles usable in the given context, in declaration order.
func (r *Registry) ForContext(context string) []*models.AuthRole {
	var out []*models.AuthRole
	for _, id := range r.order {
		if role := r.roles[id]; role.InContext(context) {
			out = append(out, role)
		}
	}
	return out
}

// Allows reports whether the role permits the action. Unknown roles permit nothing.
func (r *Registry) Allows(roleID string, action models.Action) bool {
	role, ok := r.roles[roleID]
	if !ok {
		return false
	}
	for _, a := range role.Permissions {
		if a == action {
			return true
		}
	}
	return false
}

// Grantable reports whether the role exists and may be granted on a project.
func (r *Registry) Grantable(roleID string) bool {
	role, ok := r.roles[roleID]
	return ok && role.InContext(models.RoleContextProject)
}

package models

// Action is an operation the authorization gate can allow or deny.
type Action string

// Project-scoped actions.
const (
	ActionViewProject              Action = "view_project"
	ActionUpdateProject            Action = "update_project"
	ActionDeleteProject            Action = "delete_project"
	ActionListProjectPermissions   Action = "list_project_permissions"
	ActionViewProjectPermission    Action = "view_project_permission"
	ActionManageProjectPermissions Action = "manage_project_permissions"
)

// KnownActions contains every action a role may be granted.
var KnownActions = []Action{
	ActionViewProject,
	ActionUpdateProject,
	ActionDeleteProject,
	ActionListProjectPermissions,
	ActionViewProjectPermission,
	ActionManageProjectPermissions,
}

// IsKnownAction checks if the given action is one the gate understands.
func IsKnownAction(action Action) bool {
	for _, a := range KnownActions {
		if a == action {
			return true
		}
	}
	return false
}

// Role text ids seeded by default.
const (
	RoleSystemAdmin    = "system_admin"
	RoleProjectAdmin   = "project_admin"
	RoleProjectViewer  = "project_viewer"
	RoleFileDownloader = "file_downloader"
	RoleFileUploader   = "file_uploader"
	RoleFileEditor     = "file_editor"
)

// Role contexts. A role usable in the project context may be granted on a project;
// system roles are only held globally in User.AuthRoles.
const (
	RoleContextSystem  = "system"
	RoleContextProject = "project"
)

// AuthRole is a named role with its permitted action set.
type AuthRole struct {
	TextID      string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description" yaml:"description"`
	Permissions []Action `json:"permissions" yaml:"permissions"`
	Contexts    []string `json:"contexts" yaml:"contexts"`
}

// InContext reports whether the role may be used in the given context.
func (r *AuthRole) InContext(context string) bool {
	for _, c := range r.Contexts {
		if c == context {
			return true
		}
	}
	return false
}

package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/duke-dds/dds-engine/pkg/auth"
	"github.com/duke-dds/dds-engine/pkg/models"
)

// RoleCatalog is the read side of the role registry.
type RoleCatalog interface {
	Get(id string) (*models.AuthRole, bool)
	List() []*models.AuthRole
	ForContext(context string) []*models.AuthRole
}

// AuthRolesHandler exposes the role registry.
type AuthRolesHandler struct {
	roles  RoleCatalog
	logger *zap.Logger
}

// NewAuthRolesHandler creates a new auth roles handler.
func NewAuthRolesHandler(roles RoleCatalog, logger *zap.Logger) *AuthRolesHandler {
	return &AuthRolesHandler{roles: roles, logger: logger}
}

// RegisterRoutes registers the auth roles handler's routes on the given mux.
func (h *AuthRolesHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("GET /api/v1/auth_roles", authMiddleware.RequireAuth(h.List))
	mux.HandleFunc("GET /api/v1/auth_roles/{id}", authMiddleware.RequireAuth(h.Get))
}

// List handles GET /api/v1/auth_roles
// The optional context query parameter filters by role context.
func (h *AuthRolesHandler) List(w http.ResponseWriter, r *http.Request) {
	roles := h.roles.List()
	if context := r.URL.Query().Get("context"); context != "" {
		roles = h.roles.ForContext(context)
	}

	response := make([]AuthRoleResponse, 0, len(roles))
	for _, role := range roles {
		response = append(response, toAuthRoleResponse(role))
	}
	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Get handles GET /api/v1/auth_roles/{id}
func (h *AuthRolesHandler) Get(w http.ResponseWriter, r *http.Request) {
	role, ok := h.roles.Get(r.PathValue("id"))
	if !ok {
		if err := ErrorResponse(w, http.StatusNotFound, "not_found", "Unknown auth role"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, toAuthRoleResponse(role)); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

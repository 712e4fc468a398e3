package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/duke-dds/dds-engine/pkg/auth"
	"github.com/duke-dds/dds-engine/pkg/services"
)

// PermissionsHandler handles project permission HTTP requests.
type PermissionsHandler struct {
	permissionService services.PermissionService
	roles             RoleCatalog
	logger            *zap.Logger
}

// NewPermissionsHandler creates a new permissions handler.
func NewPermissionsHandler(permissionService services.PermissionService, roles RoleCatalog, logger *zap.Logger) *PermissionsHandler {
	return &PermissionsHandler{
		permissionService: permissionService,
		roles:             roles,
		logger:            logger,
	}
}

// RegisterRoutes registers the permissions handler's routes on the given mux.
func (h *PermissionsHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("GET /api/v1/projects/{pid}/permissions", authMiddleware.RequireAuth(h.List))
	mux.HandleFunc("GET /api/v1/projects/{pid}/permissions/{uid}", authMiddleware.RequireAuth(h.Get))
	mux.HandleFunc("PUT /api/v1/projects/{pid}/permissions/{uid}", authMiddleware.RequireAuth(h.Grant))
	mux.HandleFunc("DELETE /api/v1/projects/{pid}/permissions/{uid}", authMiddleware.RequireAuth(h.Revoke))
}

// List handles GET /api/v1/projects/{pid}/permissions
func (h *PermissionsHandler) List(w http.ResponseWriter, r *http.Request) {
	projectID, ok := ParseProjectID(w, r, h.logger)
	if !ok {
		return
	}
	user, _ := auth.GetUser(r.Context())

	perms, err := h.permissionService.List(r.Context(), user, projectID)
	if err != nil {
		writeServiceError(w, err, h.logger, "list permissions")
		return
	}

	response := make([]PermissionResponse, 0, len(perms))
	for _, p := range perms {
		response = append(response, toPermissionResponse(p, h.roles))
	}
	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Get handles GET /api/v1/projects/{pid}/permissions/{uid}
func (h *PermissionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	projectID, userID, ok := ParseProjectAndUserIDs(w, r, h.logger)
	if !ok {
		return
	}
	user, _ := auth.GetUser(r.Context())

	perm, err := h.permissionService.Get(r.Context(), user, projectID, userID)
	if err != nil {
		writeServiceError(w, err, h.logger, "get permission")
		return
	}

	if err := WriteJSON(w, http.StatusOK, toPermissionResponse(perm, h.roles)); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Grant handles PUT /api/v1/projects/{pid}/permissions/{uid}
// Creating and replacing a grant both answer 200.
func (h *PermissionsHandler) Grant(w http.ResponseWriter, r *http.Request) {
	projectID, userID, ok := ParseProjectAndUserIDs(w, r, h.logger)
	if !ok {
		return
	}
	user, _ := auth.GetUser(r.Context())

	var input services.GrantInput
	if !decodeJSON(w, r, &input, h.logger) {
		return
	}

	result, err := h.permissionService.Grant(r.Context(), user, projectID, userID, input)
	if err != nil {
		writeServiceError(w, err, h.logger, "grant permission")
		return
	}

	if err := WriteJSON(w, http.StatusOK, toPermissionResponse(result.Permission, h.roles)); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Revoke handles DELETE /api/v1/projects/{pid}/permissions/{uid}
func (h *PermissionsHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	projectID, userID, ok := ParseProjectAndUserIDs(w, r, h.logger)
	if !ok {
		return
	}
	user, _ := auth.GetUser(r.Context())

	if err := h.permissionService.Revoke(r.Context(), user, projectID, userID); err != nil {
		writeServiceError(w, err, h.logger, "revoke permission")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

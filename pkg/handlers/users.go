package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/duke-dds/dds-engine/pkg/auth"
)

// UsersHandler serves the authenticated caller's own record.
type UsersHandler struct {
	logger *zap.Logger
}

// NewUsersHandler creates a new users handler.
func NewUsersHandler(logger *zap.Logger) *UsersHandler {
	return &UsersHandler{logger: logger}
}

// RegisterRoutes registers the users handler's routes on the given mux.
func (h *UsersHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("GET /api/v1/current_user", authMiddleware.RequireAuth(h.Current))
}

// Current handles GET /api/v1/current_user
func (h *UsersHandler) Current(w http.ResponseWriter, r *http.Request) {
	user, err := auth.RequireUser(r.Context())
	if err != nil {
		writeServiceError(w, err, h.logger, "get current user")
		return
	}

	roles := user.AuthRoles
	if roles == nil {
		roles = []string{}
	}
	response := CurrentUserResponse{
		UserResponse: toUserResponse(user),
		Etag:         user.Etag,
		AuthRoles:    roles,
	}
	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

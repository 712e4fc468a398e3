package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/duke-dds/dds-engine/pkg/auth"
	"github.com/duke-dds/dds-engine/pkg/services"
)

// ProjectsHandler handles project-related HTTP requests.
type ProjectsHandler struct {
	projectService services.ProjectService
	logger         *zap.Logger
}

// NewProjectsHandler creates a new projects handler.
func NewProjectsHandler(projectService services.ProjectService, logger *zap.Logger) *ProjectsHandler {
	return &ProjectsHandler{
		projectService: projectService,
		logger:         logger,
	}
}

// RegisterRoutes registers the projects handler's routes on the given mux.
func (h *ProjectsHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("GET /api/v1/projects", authMiddleware.RequireAuth(h.List))
	mux.HandleFunc("POST /api/v1/projects", authMiddleware.RequireAuth(h.Create))
	mux.HandleFunc("GET /api/v1/projects/{pid}", authMiddleware.RequireAuth(h.Get))
	mux.HandleFunc("PUT /api/v1/projects/{pid}", authMiddleware.RequireAuth(h.Update))
	mux.HandleFunc("DELETE /api/v1/projects/{pid}", authMiddleware.RequireAuth(h.Delete))
}

// List handles GET /api/v1/projects
func (h *ProjectsHandler) List(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.GetUser(r.Context())

	projects, err := h.projectService.List(r.Context(), user)
	if err != nil {
		writeServiceError(w, err, h.logger, "list projects")
		return
	}

	response := make([]ProjectResponse, 0, len(projects))
	for _, p := range projects {
		response = append(response, toProjectResponse(p))
	}
	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Create handles POST /api/v1/projects
func (h *ProjectsHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.GetUser(r.Context())

	var input services.CreateProjectInput
	if !decodeJSON(w, r, &input, h.logger) {
		return
	}

	project, err := h.projectService.Create(r.Context(), user, input)
	if err != nil {
		writeServiceError(w, err, h.logger, "create project")
		return
	}

	if err := WriteJSON(w, http.StatusCreated, toProjectResponse(project)); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Get handles GET /api/v1/projects/{pid}
func (h *ProjectsHandler) Get(w http.ResponseWriter, r *http.Request) {
	projectID, ok := ParseProjectID(w, r, h.logger)
	if !ok {
		return
	}
	user, _ := auth.GetUser(r.Context())

	project, err := h.projectService.Get(r.Context(), user, projectID)
	if err != nil {
		writeServiceError(w, err, h.logger, "get project")
		return
	}

	if err := WriteJSON(w, http.StatusOK, toProjectResponse(project)); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Update handles PUT /api/v1/projects/{pid}
// Name and description are both replaced.
func (h *ProjectsHandler) Update(w http.ResponseWriter, r *http.Request) {
	projectID, ok := ParseProjectID(w, r, h.logger)
	if !ok {
		return
	}
	user, _ := auth.GetUser(r.Context())

	var input services.UpdateProjectInput
	if !decodeJSON(w, r, &input, h.logger) {
		return
	}

	project, err := h.projectService.Update(r.Context(), user, projectID, input)
	if err != nil {
		writeServiceError(w, err, h.logger, "update project")
		return
	}

	if err := WriteJSON(w, http.StatusOK, toProjectResponse(project)); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Delete handles DELETE /api/v1/projects/{pid}
func (h *ProjectsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	projectID, ok := ParseProjectID(w, r, h.logger)
	if !ok {
		return
	}
	user, _ := auth.GetUser(r.Context())

	if err := h.projectService.Delete(r.Context(), user, projectID); err != nil {
		writeServiceError(w, err, h.logger, "delete project")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

package handlers

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/duke-dds/dds-engine/pkg/config"
	"github.com/duke-dds/dds-engine/pkg/logging"
)

const (
	dependencyUp       = "up"
	dependencyDown     = "down"
	dependencyDisabled = "disabled"

	healthCheckTimeout = 2 * time.Second
)

// Pinger is the database handle the health checks need. *database.DB satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status       string            `json:"status"`
	Dependencies map[string]string `json:"dependencies"`
}

// PingResponse describes the running instance and its dependencies.
type PingResponse struct {
	Status       string            `json:"status"`
	Service      string            `json:"service"`
	Version      string            `json:"version"`
	Environment  string            `json:"environment"`
	Hostname     string            `json:"hostname,omitempty"`
	Dependencies map[string]string `json:"dependencies"`
}

// HealthHandler reports whether PostgreSQL and, when configured, Redis are reachable.
type HealthHandler struct {
	cfg    *config.Config
	db     Pinger
	cache  *redis.Client // nil when Redis is not configured
	logger *zap.Logger
}

// NewHealthHandler creates a HealthHandler. cache may be nil.
func NewHealthHandler(cfg *config.Config, db Pinger, cache *redis.Client, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		cfg:    cfg,
		db:     db,
		cache:  cache,
		logger: logger.Named("health"),
	}
}

// RegisterRoutes registers the health handler's routes on the given mux.
func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("GET /ping", h.Ping)
}

// Health answers 200 when every configured dependency responds and 503 otherwise.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	deps, healthy := h.checkDependencies(r.Context())

	status, code := "ok", http.StatusOK
	if !healthy {
		status, code = "unavailable", http.StatusServiceUnavailable
	}

	if err := WriteJSON(w, code, HealthResponse{Status: status, Dependencies: deps}); err != nil {
		h.logger.Error("Failed to encode health response", zap.Error(err))
	}
}

// Ping always answers 200 and reports "degraded" when a dependency is down.
func (h *HealthHandler) Ping(w http.ResponseWriter, r *http.Request) {
	deps, healthy := h.checkDependencies(r.Context())

	hostname, err := os.Hostname()
	if err != nil {
		h.logger.Warn("Failed to read hostname", zap.Error(err))
	}

	response := PingResponse{
		Status:       "ok",
		Service:      "dds-engine",
		Version:      h.cfg.Version,
		Environment:  h.cfg.Env,
		Hostname:     hostname,
		Dependencies: deps,
	}
	if !healthy {
		response.Status = "degraded"
	}

	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to encode ping response", zap.Error(err))
	}
}

func (h *HealthHandler) checkDependencies(ctx context.Context) (map[string]string, bool) {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	deps := map[string]string{
		"postgres": dependencyUp,
		"redis":    dependencyDisabled,
	}
	healthy := true

	if err := h.db.Ping(ctx); err != nil {
		h.logger.Warn("PostgreSQL health check failed", zap.String("error", logging.SanitizeError(err)))
		deps["postgres"] = dependencyDown
		healthy = false
	}

	if h.cache != nil {
		deps["redis"] = dependencyUp
		if err := h.cache.Ping(ctx).Err(); err != nil {
			h.logger.Warn("Redis health check failed", zap.Error(err))
			deps["redis"] = dependencyDown
			healthy = false
		}
	}

	return deps, healthy
}

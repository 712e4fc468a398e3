package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/duke-dds/dds-engine/pkg/apperrors"
)

// Middleware provides HTTP authentication middleware.
// It is thin and delegates authentication logic to AuthService and IdentityResolver.
type Middleware struct {
	authService AuthService
	identities  IdentityResolver
	logger      *zap.Logger
}

// NewMiddleware creates a new auth middleware.
func NewMiddleware(authService AuthService, identities IdentityResolver, logger *zap.Logger) *Middleware {
	return &Middleware{
		authService: authService,
		identities:  identities,
		logger:      logger,
	}
}

// RequireAuth validates the bearer token and resolves the caller.
// Downstream handlers read the caller with GetUser or RequireUser.
// The token is checked before any store access.
func (m *Middleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, err := m.authService.ValidateRequest(r)
		if err != nil {
			m.unauthorized(w, "Authentication required")
			return
		}

		user, err := m.identities.Resolve(r.Context(), claims)
		if err != nil {
			if errors.Is(err, apperrors.ErrUnauthenticated) {
				m.unauthorized(w, "Unknown user")
				return
			}
			m.logger.Error("Failed to resolve identity",
				zap.String("subject", claims.Subject),
				zap.Error(err))
			m.internalError(w)
			return
		}

		next(w, r.WithContext(WithUser(r.Context(), user)))
	}
}

// unauthorized returns a 401 response with JSON error body.
func (m *Middleware) unauthorized(w http.ResponseWriter, message string) {
	writeJSONError(w, http.StatusUnauthorized, "unauthorized", message)
}

// internalError returns a 500 response with JSON error body.
func (m *Middleware) internalError(w http.ResponseWriter) {
	writeJSONError(w, http.StatusInternalServerError, "internal_error", "Failed to resolve identity")
}

func writeJSONError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   code,
		"message": message,
	})
}

package auth

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/duke-dds/dds-engine/pkg/logging"
)

// CookieName is the cookie browser clients carry their token in.
const CookieName = "dds_jwt"

// Common authentication errors.
var (
	ErrMissingAuthorization = errors.New("missing authorization")
	ErrInvalidAuthFormat    = errors.New("invalid authorization header format")
	ErrMissingSubject       = errors.New("missing subject in token")
)

// AuthService defines the interface for authentication operations.
// This abstraction enables clean separation between HTTP handling
// and authentication logic, making both easier to test.
type AuthService interface {
	// ValidateRequest extracts and validates a JWT from the request.
	// It checks for the token in:
	//   1. Cookie named "dds_jwt" (browser clients)
	//   2. Authorization header with "Bearer" scheme (API clients)
	// Returns the validated claims or an error.
	ValidateRequest(r *http.Request) (*Claims, error)
}

// authService implements AuthService.
type authService struct {
	jwksClient JWKSClientInterface
	logger     *zap.Logger
}

// NewAuthService creates a new AuthService with the given JWKS client and logger.
func NewAuthService(jwksClient JWKSClientInterface, logger *zap.Logger) AuthService {
	return &authService{
		jwksClient: jwksClient,
		logger:     logger,
	}
}

func (s *authService) ValidateRequest(r *http.Request) (*Claims, error) {
	var tokenString string
	var tokenSource string

	if cookie, err := r.Cookie(CookieName); err == nil && cookie.Value != "" {
		tokenString = cookie.Value
		tokenSource = "cookie"
	} else {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			s.logger.Debug("No JWT found in request",
				zap.String("path", r.URL.Path),
				zap.String("method", r.Method))
			return nil, ErrMissingAuthorization
		}

		scheme, token, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			s.logger.Debug("Invalid Authorization header format",
				zap.String("path", r.URL.Path),
				zap.String("header", logging.SanitizeToken(authHeader)))
			return nil, ErrInvalidAuthFormat
		}
		tokenString = strings.TrimSpace(token)
		tokenSource = "header"
	}

	claims, err := s.jwksClient.ValidateToken(tokenString)
	if err != nil {
		s.logger.Debug("JWT validation failed",
			zap.String("error", logging.SanitizeError(err)),
			zap.String("path", r.URL.Path),
			zap.String("token_source", tokenSource))
		return nil, err
	}

	if claims.Subject == "" {
		return nil, ErrMissingSubject
	}

	return claims, nil
}

// Ensure authService implements AuthService at compile time.
var _ AuthService = (*authService)(nil)

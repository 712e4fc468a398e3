package auth

import (
	"context"

	"github.com/duke-dds/dds-engine/pkg/apperrors"
	"github.com/duke-dds/dds-engine/pkg/models"
)

// WithUser returns a context carrying the authenticated user.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, UserKey, user)
}

// GetUser retrieves the authenticated user set by the auth middleware.
func GetUser(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(UserKey).(*models.User)
	return user, ok && user != nil
}

// RequireUser is GetUser for call sites that cannot proceed anonymously.
func RequireUser(ctx context.Context) (*models.User, error) {
	user, ok := GetUser(ctx)
	if !ok {
		return nil, apperrors.ErrUnauthenticated
	}
	return user, nil
}

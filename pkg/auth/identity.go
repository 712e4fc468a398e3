package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/duke-dds/dds-engine/pkg/apperrors"
	"github.com/duke-dds/dds-engine/pkg/models"
)

// identityCachePrefix namespaces cached users in Redis.
const identityCachePrefix = "dds:identity:"

// UserStore is the part of the user repository identity resolution needs.
type UserStore interface {
	GetByUUID(ctx context.Context, subject string) (*models.User, error)
	Provision(ctx context.Context, user *models.User) (*models.User, error)
}

// IdentityResolver maps validated claims to a stored user.
type IdentityResolver interface {
	// Resolve returns the user whose uuid equals claims.Subject.
	// Unknown subjects yield apperrors.ErrUnauthenticated unless auto-provisioning is on.
	Resolve(ctx context.Context, claims *Claims) (*models.User, error)
}

// IdentityConfig configures an IdentityResolver.
type IdentityConfig struct {
	// AutoProvision creates unknown users from their claims.
	AutoProvision bool
	// CacheTTL bounds how long a resolved user is served from Redis.
	CacheTTL time.Duration
}

type identityResolver struct {
	users  UserStore
	cache  *redis.Client // nil disables caching
	group  singleflight.Group
	config IdentityConfig
	logger *zap.Logger
}

// NewIdentityResolver creates an IdentityResolver. cache may be nil.
func NewIdentityResolver(users UserStore, cache *redis.Client, config IdentityConfig, logger *zap.Logger) IdentityResolver {
	if config.CacheTTL <= 0 {
		config.CacheTTL = 5 * time.Minute
	}
	return &identityResolver{
		users:  users,
		cache:  cache,
		config: config,
		logger: logger.Named("identity"),
	}
}

func (r *identityResolver) Resolve(ctx context.Context, claims *Claims) (*models.User, error) {
	subject := claims.Subject
	if subject == "" {
		return nil, apperrors.ErrUnauthenticated
	}

	if user, ok := r.fromCache(ctx, subject); ok {
		return user, nil
	}

	// Concurrent requests for the same subject share one store lookup.
	// The lookup outlives any single caller, so it keeps ctx values
	// (the request's DB scope) but not ctx cancellation.
	v, err, _ := r.group.Do(subject, func() (interface{}, error) {
		return r.load(context.WithoutCancel(ctx), claims)
	})
	if err != nil {
		return nil, err
	}

	user := v.(*models.User)
	r.toCache(ctx, user)

	// Callers may hold the shared pointer; hand each its own copy.
	clone := *user
	clone.AuthRoles = append([]string(nil), user.AuthRoles...)
	return &clone, nil
}

func (r *identityResolver) load(ctx context.Context, claims *Claims) (*models.User, error) {
	user, err := r.users.GetByUUID(ctx, claims.Subject)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to resolve identity: %w", err)
	}

	if !r.config.AutoProvision {
		r.logger.Debug("Unknown subject", zap.String("subject", claims.Subject))
		return nil, apperrors.ErrUnauthenticated
	}

	user, err = r.users.Provision(ctx, &models.User{
		UUID:  claims.Subject,
		Email: claims.Email,
		Name:  claims.Name,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to provision user: %w", err)
	}

	r.logger.Info("Provisioned user from token claims",
		zap.String("subject", user.UUID),
		zap.String("user_id", user.ID.String()))
	return user, nil
}

// Cache failures are logged and otherwise ignored; the store stays authoritative.
func (r *identityResolver) fromCache(ctx context.Context, subject string) (*models.User, bool) {
	if r.cache == nil {
		return nil, false
	}

	data, err := r.cache.Get(ctx, identityCachePrefix+subject).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Warn("Identity cache read failed", zap.Error(err))
		}
		return nil, false
	}

	var user models.User
	if err := json.Unmarshal(data, &user); err != nil {
		r.logger.Warn("Discarding malformed identity cache entry",
			zap.String("subject", subject),
			zap.Error(err))
		return nil, false
	}
	return &user, true
}

func (r *identityResolver) toCache(ctx context.Context, user *models.User) {
	if r.cache == nil {
		return
	}

	data, err := json.Marshal(user)
	if err != nil {
		r.logger.Warn("Failed to encode user for identity cache", zap.Error(err))
		return
	}
	if err := r.cache.Set(ctx, identityCachePrefix+user.UUID, data, r.config.CacheTTL).Err(); err != nil {
		r.logger.Warn("Identity cache write failed", zap.Error(err))
	}
}

// Ensure identityResolver implements IdentityResolver at compile time.
var _ IdentityResolver = (*identityResolver)(nil)

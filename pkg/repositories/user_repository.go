package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/duke-dds/dds-engine/pkg/database"
	"github.com/duke-dds/dds-engine/pkg/models"
)

// UserRepository defines the interface for user data access.
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	// GetByUUID looks a user up by the external identifier carried in the token subject.
	GetByUUID(ctx context.Context, subject string) (*models.User, error)
	// Provision inserts the user unless one with the same UUID exists,
	// and returns the stored row either way.
	Provision(ctx context.Context, user *models.User) (*models.User, error)
}

// userRepository implements UserRepository using PostgreSQL.
type userRepository struct{}

// NewUserRepository creates a new user repository.
func NewUserRepository() UserRepository {
	return &userRepository{}
}

const userColumns = `id, uuid, etag, email, name, auth_roles, created_at`

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	q, err := database.QuerierFromContext(ctx)
	if err != nil {
		return nil, err
	}

	return scanUser(q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *userRepository) GetByUUID(ctx context.Context, subject string) (*models.User, error) {
	q, err := database.QuerierFromContext(ctx)
	if err != nil {
		return nil, err
	}

	return scanUser(q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE uuid = $1`, subject))
}

func (r *userRepository) Provision(ctx context.Context, user *models.User) (*models.User, error) {
	q, err := database.QuerierFromContext(ctx)
	if err != nil {
		return nil, err
	}

	if user.UUID == "" {
		return nil, fmt.Errorf("cannot provision user without uuid")
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.Etag == "" {
		user.Etag = strings.ReplaceAll(uuid.NewString(), "-", "")
	}
	if user.AuthRoles == nil {
		user.AuthRoles = []string{}
	}
	now := time.Now().UTC()

	// The no-op update makes RETURNING yield the existing row on conflict.
	row := q.QueryRow(ctx, `
		INSERT INTO users (id, uuid, etag, email, name, auth_roles, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		ON CONFLICT (uuid) DO UPDATE SET uuid = EXCLUDED.uuid
		RETURNING `+userColumns,
		user.ID,
		user.UUID,
		user.Etag,
		user.Email,
		user.Name,
		user.AuthRoles,
		now,
	)
	return scanUser(row)
}

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.UUID,
		&user.Etag,
		&user.Email,
		&user.Name,
		&user.AuthRoles,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, wrapError("get user", err)
	}
	return &user, nil
}

// Ensure userRepository implements UserRepository at compile time.
var _ UserRepository = (*userRepository)(nil)

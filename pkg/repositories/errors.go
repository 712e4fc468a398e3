package repositories

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/duke-dds/dds-engine/pkg/apperrors"
)

const sqlStateForeignKeyViolation = "23503"

// wrapError maps driver errors onto apperrors and adds operation context.
func wrapError(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == sqlStateForeignKeyViolation {
		return fmt.Errorf("%s: %s: %w", op, pgErr.ConstraintName, apperrors.ErrNotFound)
	}

	return fmt.Errorf("failed to %s: %w", op, err)
}

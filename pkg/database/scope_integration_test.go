//go:build integration

package database_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duke-dds/dds-engine/pkg/database"
	"github.com/duke-dds/dds-engine/pkg/testhelpers"
)

func countUsers(t *testing.T, ctx context.Context, subject string) int {
	t.Helper()

	q, err := database.QuerierFromContext(ctx)
	require.NoError(t, err)

	var n int
	require.NoError(t, q.QueryRow(ctx, `SELECT count(*) FROM users WHERE uuid = $1`, subject).Scan(&n))
	return n
}

func insertUser(ctx context.Context, subject string) error {
	q, err := database.QuerierFromContext(ctx)
	if err != nil {
		return err
	}
	_, err = q.Exec(ctx, `INSERT INTO users (id, uuid, etag) VALUES (gen_random_uuid(), $1, 'e')`, subject)
	return err
}

func TestScope_RollbackOnError(t *testing.T) {
	engineDB := testhelpers.GetEngineDB(t)
	engineDB.Reset(t)
	ctx := engineDB.Context(t)

	err := database.NewTxManager().RunInTx(ctx, func(ctx context.Context) error {
		require.NoError(t, insertUser(ctx, "rolled-back"))
		return errors.New("abort")
	})
	require.EqualError(t, err, "abort")

	assert.Equal(t, 0, countUsers(t, ctx, "rolled-back"))
}

func TestScope_NestedJoinsOuter(t *testing.T) {
	engineDB := testhelpers.GetEngineDB(t)
	engineDB.Reset(t)
	ctx := engineDB.Context(t)
	tx := database.NewTxManager()

	err := tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := tx.RunInTx(ctx, func(ctx context.Context) error {
			return insertUser(ctx, "inner")
		}); err != nil {
			return err
		}
		return errors.New("outer fails")
	})
	require.Error(t, err)

	// The inner write belonged to the outer transaction and was rolled back with it.
	assert.Equal(t, 0, countUsers(t, ctx, "inner"))
}

func TestScope_CommitVisibleToOtherScopes(t *testing.T) {
	engineDB := testhelpers.GetEngineDB(t)
	engineDB.Reset(t)
	ctx := engineDB.Context(t)

	require.NoError(t, database.NewTxManager().RunInTx(ctx, func(ctx context.Context) error {
		return insertUser(ctx, "committed")
	}))

	other := engineDB.Context(t)
	assert.Equal(t, 1, countUsers(t, other, "committed"))
}

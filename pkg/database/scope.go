package database

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNoScope is returned when a repository runs without a request scope in context.
var ErrNoScope = errors.New("no database scope in context")

// Querier is the part of pgx the repositories use.
// Both a pooled connection and an open transaction satisfy it.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Scope is the database handle for a single request.
// A connection is acquired on first use, so requests rejected before
// touching the store never take one from the pool.
type Scope struct {
	db *DB

	mu   sync.Mutex
	conn *pgxpool.Conn
	tx   pgx.Tx
}

// NewScope creates an empty scope bound to the pool.
func (db *DB) NewScope() *Scope {
	return &Scope{db: db}
}

// Querier returns the open transaction if there is one, otherwise the
// scope's connection, acquiring it if needed.
func (s *Scope) Querier(ctx context.Context) (Querier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tx != nil {
		return s.tx, nil
	}
	if err := s.acquireLocked(ctx); err != nil {
		return nil, err
	}
	return s.conn, nil
}

// Acquired reports whether the scope has taken a connection from the pool.
func (s *Scope) Acquired() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn != nil
}

// RunInTx runs fn inside a transaction. Repositories called from fn with the
// same context see the transaction through Querier. A nested call joins the
// outer transaction. The transaction commits when fn returns nil and rolls
// back otherwise.
func (s *Scope) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	if s.tx != nil {
		s.mu.Unlock()
		return fn(ctx)
	}
	if err := s.acquireLocked(ctx); err != nil {
		s.mu.Unlock()
		return err
	}
	tx, err := s.conn.Begin(ctx)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	s.tx = tx
	s.mu.Unlock()

	defer func() {
		// No-op after a successful commit.
		_ = tx.Rollback(context.Background())
		s.mu.Lock()
		s.tx = nil
		s.mu.Unlock()
	}()

	if err := fn(ctx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Close releases the connection back to the pool. Safe to call more than once.
func (s *Scope) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		s.conn.Release()
		s.conn = nil
	}
}

func (s *Scope) acquireLocked(ctx context.Context) error {
	if s.conn != nil {
		return nil
	}
	conn, err := s.db.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire connection: %w", err)
	}
	s.conn = conn
	return nil
}

package database

import (
	"context"
)

type contextKey string

const (
	// ScopeKey is the context key for the request-scoped database handle.
	ScopeKey contextKey = "dbScope"
)

// GetScope retrieves the request scope from context.
// Returns nil and false if not present.
func GetScope(ctx context.Context) (*Scope, bool) {
	scope, ok := ctx.Value(ScopeKey).(*Scope)
	return scope, ok
}

// SetScope stores the request scope in context.
func SetScope(ctx context.Context, scope *Scope) context.Context {
	return context.WithValue(ctx, ScopeKey, scope)
}

// QuerierFromContext returns the querier for the scope stored in ctx.
func QuerierFromContext(ctx context.Context) (Querier, error) {
	scope, ok := GetScope(ctx)
	if !ok {
		return nil, ErrNoScope
	}
	return scope.Querier(ctx)
}

// TxManager runs a function inside a single database transaction.
type TxManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type scopeTxManager struct{}

// NewTxManager returns a TxManager that uses the request scope found in ctx.
func NewTxManager() TxManager {
	return scopeTxManager{}
}

func (scopeTxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	scope, ok := GetScope(ctx)
	if !ok {
		return ErrNoScope
	}
	return scope.RunInTx(ctx, fn)
}

var _ TxManager = scopeTxManager{}

// WithScope returns a context carrying a fresh scope and its cleanup function.
// Used outside HTTP requests, e.g. startup tasks and tests.
func (db *DB) WithScope(ctx context.Context) (context.Context, func()) {
	scope := db.NewScope()
	return SetScope(ctx, scope), scope.Close
}

package database

import (
	"net/http"
)

// WithRequestScope attaches a lazy database scope to every request.
// The connection, if one was acquired, is released after the handler returns.
func WithRequestScope(db *DB) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scope := db.NewScope()
			defer scope.Close()

			next.ServeHTTP(w, r.WithContext(SetScope(r.Context(), scope)))
		})
	}
}

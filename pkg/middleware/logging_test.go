package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRequestLogger_Status(t *testing.T) {
	tests := []struct {
		name       string
		handler    http.HandlerFunc
		wantStatus int64
	}{
		{
			name:       "implicit ok on write",
			handler:    func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("ok")) },
			wantStatus: http.StatusOK,
		},
		{
			name:       "explicit not found",
			handler:    func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNotFound) },
			wantStatus: http.StatusNotFound,
		},
		{
			name: "second WriteHeader dropped",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				w.WriteHeader(http.StatusInternalServerError)
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "handler writes nothing",
			handler:    func(w http.ResponseWriter, r *http.Request) {},
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zap.DebugLevel)
			handler := RequestLogger(zap.New(core))(tt.handler)

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/projects", nil))

			require.Equal(t, 1, logs.Len())
			entry := logs.All()[0]
			assert.Equal(t, "HTTP request", entry.Message)
			assert.Equal(t, tt.wantStatus, entry.ContextMap()["status"])
			assert.Equal(t, http.MethodDelete, entry.ContextMap()["method"])
			assert.EqualValues(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestRequestLogger_NilLoggerPassesThrough(t *testing.T) {
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	RequestLogger(nil)(next).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.True(t, called)
}

func TestRequestLogger_IncludesRoutePattern(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/projects/{pid}", func(w http.ResponseWriter, r *http.Request) {})
	handler := RequestLogger(zap.New(core))(mux)

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/projects/123", nil))

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "GET /api/v1/projects/{pid}", logs.All()[0].ContextMap()["route"])
	assert.Equal(t, "/api/v1/projects/123", logs.All()[0].ContextMap()["path"])
}

func TestResponseWriter_WriteLocksStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := newResponseWriter(rec)

	_, err := rw.Write([]byte("hello"))
	require.NoError(t, err)
	assert.True(t, rw.headerWritten)

	rw.WriteHeader(http.StatusTeapot)
	assert.Equal(t, http.StatusOK, rw.statusCode)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hello", rec.Body.String())
}

func TestNewResponseWriter_ReusesWrapped(t *testing.T) {
	rw := newResponseWriter(httptest.NewRecorder())
	assert.Same(t, rw, newResponseWriter(rw))
}

func TestResponseWriter_Unwrap(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := newResponseWriter(rec)
	assert.Equal(t, http.ResponseWriter(rec), rw.Unwrap())
}

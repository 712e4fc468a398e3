package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/duke-dds/dds-engine/pkg/apperrors"
)

// maxBodyBytes bounds decoded request bodies.
const maxBodyBytes = 1 << 20

// APIError is the JSON body of every error response.
// Fields is only set for validation failures.
type APIError struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// ErrorResponse writes a JSON error response and returns any encoding error.
func ErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string) error {
	return WriteJSON(w, statusCode, APIError{Error: errorCode, Message: message})
}

// WriteJSON writes a JSON response and returns any encoding error.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	if statusCode != http.StatusOK {
		w.WriteHeader(statusCode)
	}
	return json.NewEncoder(w).Encode(data)
}

// decodeJSON reads the request body into dst. On failure it writes a
// 400 invalid_request response and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}, logger *zap.Logger) bool {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst)
	if err == nil {
		return true
	}

	message := "Invalid request body"
	if errors.Is(err, io.EOF) {
		message = "Request body is empty"
	}
	if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", message); err != nil {
		logger.Error("Failed to write error response", zap.Error(err))
	}
	return false
}

// writeServiceError maps a service error onto its HTTP status.
// Anything that is not a known application error is logged and answered with 500.
func writeServiceError(w http.ResponseWriter, err error, logger *zap.Logger, op string) {
	var (
		status int
		body   APIError
		verr   *apperrors.ValidationError
	)

	switch {
	case errors.As(err, &verr):
		status = http.StatusBadRequest
		body = APIError{Error: "validation_failed", Message: verr.Error(), Fields: verr.Fields}
	case errors.Is(err, apperrors.ErrUnauthenticated):
		status = http.StatusUnauthorized
		body = APIError{Error: "unauthorized", Message: "Authentication required"}
	case errors.Is(err, apperrors.ErrForbidden):
		status = http.StatusForbidden
		body = APIError{Error: "forbidden", Message: "Not allowed"}
	case errors.Is(err, apperrors.ErrNotFound):
		status = http.StatusNotFound
		body = APIError{Error: "not_found", Message: "Not found"}
	default:
		logger.Error("Request failed", zap.String("operation", op), zap.Error(err))
		status = http.StatusInternalServerError
		body = APIError{Error: "internal_error", Message: fmt.Sprintf("Failed to %s", op)}
	}

	if err := WriteJSON(w, status, body); err != nil {
		logger.Error("Failed to write error response", zap.Error(err))
	}
}

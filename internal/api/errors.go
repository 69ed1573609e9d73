package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nerrad567/gray-logic-registry/internal/registry"
)

// Error represents a structured error response.
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Common error codes.
const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeNotFound     = "not_found"
	ErrCodeUnauthorized = "unauthorised"
	ErrCodeForbidden    = "forbidden"
	ErrCodeConflict     = "conflict"
	ErrCodeInternal     = "internal_error"
	ErrCodeValidation   = "validation_error"
	ErrCodeTypeMismatch = "type_mismatch"
	ErrCodeStorage      = "storage_error"
)

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write to response; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}

// writeError writes a structured error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Error{
		Status:  status,
		Code:    code,
		Message: message,
	})
}

// writeBadRequest writes a 400 error response.
func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

// writeUnauthorized writes a 401 error response.
func writeUnauthorized(w http.ResponseWriter, message string) {
	writeError(w, http.StatusUnauthorized, ErrCodeUnauthorized, message)
}

// writeForbidden writes a 403 error response.
func writeForbidden(w http.ResponseWriter, message string) {
	writeError(w, http.StatusForbidden, ErrCodeForbidden, message)
}

// writeInternalError writes a 500 error response.
func writeInternalError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusInternalServerError, ErrCodeInternal, message)
}

// registryStatus maps a registry error to its status and code.
func registryStatus(err error) (int, string) {
	switch {
	case errors.Is(err, registry.ErrResolution):
		return http.StatusNotFound, ErrCodeNotFound
	case errors.Is(err, registry.ErrTypeMismatch):
		return http.StatusBadRequest, ErrCodeTypeMismatch
	case errors.Is(err, registry.ErrConversion):
		return http.StatusUnprocessableEntity, ErrCodeValidation
	case errors.Is(err, registry.ErrStorage):
		return http.StatusBadGateway, ErrCodeStorage
	case errors.Is(err, registry.ErrCommit):
		return http.StatusConflict, ErrCodeConflict
	}
	return http.StatusInternalServerError, ErrCodeInternal
}

// writeRegistryError writes the response for an error returned by the registry.
func writeRegistryError(w http.ResponseWriter, err error) {
	status, code := registryStatus(err)
	writeError(w, status, code, err.Error())
}

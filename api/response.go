package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/garnizeh/assessboard/internal/assessment"
	"github.com/garnizeh/assessboard/internal/repository"
)

// errorResponse is the body of every non-2xx reply.
type errorResponse struct {
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("encode response", slog.Any("err", err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Message: msg})
}

// writeStoreError maps domain and store failures to HTTP statuses.
func writeStoreError(w http.ResponseWriter, err error) {
	var verr *assessment.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "validation failed", Fields: verr.Fields})
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "employee not found")
	case errors.Is(err, repository.ErrDuplicateEmail):
		writeJSON(w, http.StatusConflict, errorResponse{
			Message: "email already exists",
			Fields:  map[string]string{"email": "Email already exists"},
		})
	case errors.Is(err, repository.ErrUnauthorized):
		writeError(w, http.StatusForbidden, repository.ErrUnauthorized.Error())
	default:
		logger.Error("store failure", slog.Any("err", err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

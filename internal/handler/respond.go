package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/lifequest/lifequest/internal/progression"
	"github.com/lifequest/lifequest/internal/repository"
	"github.com/lifequest/lifequest/internal/service"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	Code      int    `json:"code"`
	Path      string `json:"path"`
	Retryable bool   `json:"retryable,omitempty"`
}

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// WriteError writes an ErrorResponse. Middleware uses it too so every error
// body has the same shape.
func WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{
		Error:   code,
		Message: message,
		Code:    status,
		Path:    r.URL.Path,
	})
}

// decodeJSON reads a JSON body into v. An empty body leaves v untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}

	WriteError(w, r, http.StatusBadRequest, "invalid_body", "Request body must be valid JSON")
	return false
}

// handleError maps service errors to HTTP responses. Unknown errors are
// logged and reported without detail.
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	var pe *progression.Error
	if errors.As(err, &pe) {
		status := statusForKind(pe.Kind)
		if status >= http.StatusInternalServerError {
			slog.Warn("request failed", "error", err, "path", r.URL.Path, "kind", pe.Kind.String())
		}
		writeJSON(w, status, ErrorResponse{
			Error:     pe.Code,
			Message:   pe.Message,
			Code:      status,
			Path:      r.URL.Path,
			Retryable: pe.Retryable(),
		})
		return
	}

	switch {
	case errors.Is(err, repository.ErrGoalNotFound):
		WriteError(w, r, http.StatusNotFound, "goal_not_found", "Goal not found")
	case errors.Is(err, repository.ErrStepNotFound):
		WriteError(w, r, http.StatusNotFound, "step_not_found", "Step not found")
	case errors.Is(err, repository.ErrUserNotFound):
		WriteError(w, r, http.StatusNotFound, "user_not_found", "User not found")
	case errors.Is(err, repository.ErrDuplicateXPEntry):
		WriteError(w, r, http.StatusConflict, "already_awarded", "XP was already awarded for this action")
	case errors.Is(err, service.ErrInvalidCredentials):
		WriteError(w, r, http.StatusUnauthorized, "invalid_credentials", "Invalid email or password")
	case errors.Is(err, service.ErrEmailAlreadyExists):
		WriteError(w, r, http.StatusBadRequest, "email_registered", "Email already registered")
	case errors.Is(err, service.ErrInvalidEmail):
		WriteError(w, r, http.StatusBadRequest, "invalid_email", "Invalid email address")
	case errors.Is(err, service.ErrInvalidInput):
		WriteError(w, r, http.StatusBadRequest, "invalid_input", err.Error())
	default:
		slog.Error("request failed", "error", err, "method", r.Method, "path", r.URL.Path)
		WriteError(w, r, http.StatusInternalServerError, "internal_error", "Something went wrong")
	}
}

func statusForKind(kind progression.Kind) int {
	switch kind {
	case progression.KindValidation:
		return http.StatusBadRequest
	case progression.KindSequence, progression.KindStateConflict, progression.KindIncompleteSteps:
		return http.StatusConflict
	case progression.KindNotEligible:
		return http.StatusUnprocessableEntity
	case progression.KindGeneration:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/kmorrow/todo-list-api/internal/domain"
)

// ErrorResponse is the error body shape for every failure. Messages is only
// populated for validation failures.
type ErrorResponse struct {
	Error    string   `json:"error"`
	Messages []string `json:"messages,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("ERROR [handlers.respondJSON] failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message})
}

func respondValidationErrors(w http.ResponseWriter, errs *domain.ValidationErrors) {
	respondJSON(w, http.StatusBadRequest, ErrorResponse{
		Error:    "Validation failed",
		Messages: errs.Messages,
	})
}

// respondServiceError translates domain sentinels into the status taxonomy.
// Anything unrecognized becomes a 500 with the detail suppressed.
func respondServiceError(w http.ResponseWriter, err error) {
	var validationErrs *domain.ValidationErrors
	if errors.As(err, &validationErrs) {
		respondValidationErrors(w, validationErrs)
		return
	}

	switch {
	case errors.Is(err, domain.ErrUsernameTaken),
		errors.Is(err, domain.ErrEmailTaken):
		// Duplicate unique fields report as 400, matching the validation
		// surface the client already handles.
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrUserDeactivated),
		errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrTokenExpired),
		errors.Is(err, domain.ErrTokenInvalid),
		errors.Is(err, domain.ErrWrongTokenType),
		errors.Is(err, domain.ErrRefreshTokenRevoked):
		respondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrNotOwner):
		respondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrTodoNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	default:
		log.Printf("ERROR [handlers] unexpected error: %v", err)
		respondError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// decodeStrict decodes a JSON body and rejects unknown fields so client
// typos surface as 400s instead of silently dropped updates.
func decodeStrict(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

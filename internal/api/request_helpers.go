package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/taskhive/taskhive/internal/api/middleware"
	"github.com/taskhive/taskhive/internal/api/shared"
	"github.com/taskhive/taskhive/internal/domain"
)

// Aliases so handlers in this package read cleanly.
var (
	DecodeJSON       = shared.DecodeJSON
	ValidateRequest  = shared.ValidateRequest
	RespondWithJSON  = shared.RespondWithJSON
	RespondWithError = shared.RespondWithError
)

// currentUser extracts the authenticated user placed in the context by the
// auth middleware. Writes a 401 response and returns false when absent,
// which only happens if a route is misregistered outside the guard.
func currentUser(w http.ResponseWriter, r *http.Request) (*domain.User, bool) {
	user, ok := middleware.CurrentUser(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return nil, false
	}
	return user, true
}

// pathUUID extracts a UUID path parameter. A malformed ID maps to
// domain.ErrInvalidID, which the error mapper treats as a 404: an
// unparseable task ID is as absent as an unknown one.
func pathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return uuid.Nil, domain.NewValidationError(paramName, "is required", domain.ErrInvalidID)
	}

	id, err := uuid.Parse(pathParam)
	if err != nil {
		return uuid.Nil, domain.NewValidationError(paramName, "has invalid format", domain.ErrInvalidID)
	}

	return id, nil
}

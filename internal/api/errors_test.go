package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taskhive/taskhive/internal/domain"
	"github.com/taskhive/taskhive/internal/service/auth"
	"github.com/taskhive/taskhive/internal/store"
)

func TestMapErrorToStatusCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "invalid token", err: auth.ErrInvalidToken, want: http.StatusUnauthorized},
		{name: "expired token", err: auth.ErrExpiredToken, want: http.StatusUnauthorized},
		{name: "missing token", err: auth.ErrMissingToken, want: http.StatusUnauthorized},
		{name: "unauthorized", err: domain.ErrUnauthorized, want: http.StatusUnauthorized},
		{name: "task not found", err: store.ErrTaskNotFound, want: http.StatusNotFound},
		{name: "user not found", err: store.ErrUserNotFound, want: http.StatusNotFound},
		{name: "malformed id behaves like not found", err: domain.ErrInvalidID, want: http.StatusNotFound},
		{name: "duplicate email is a bad request", err: store.ErrEmailExists, want: http.StatusBadRequest},
		{name: "validation failure", err: domain.ErrValidation, want: http.StatusBadRequest},
		{name: "invalid priority", err: domain.ErrInvalidPriority, want: http.StatusBadRequest},
		{name: "invalid status", err: domain.ErrInvalidStatus, want: http.StatusBadRequest},
		{name: "invalid entity", err: store.ErrInvalidEntity, want: http.StatusBadRequest},
		{name: "wrapped errors unwrap", err: fmt.Errorf("context: %w", store.ErrTaskNotFound), want: http.StatusNotFound},
		{name: "unknown error", err: errors.New("something else"), want: http.StatusInternalServerError},
		{name: "nil error", err: nil, want: http.StatusInternalServerError},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, MapErrorToStatusCode(tc.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	t.Parallel()

	t.Run("internal details never leak", func(t *testing.T) {
		t.Parallel()
		err := errors.New("pq: connection to postgres://user:secret@db failed")
		msg := GetSafeErrorMessage(err)
		assert.Equal(t, "An unexpected error occurred", msg)
	})

	t.Run("not-owned and absent tasks share one message", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "Task not found", GetSafeErrorMessage(store.ErrTaskNotFound))
		assert.Equal(t, "Task not found", GetSafeErrorMessage(domain.ErrInvalidID))
	})

	t.Run("auth failures share one message", func(t *testing.T) {
		t.Parallel()
		want := GetSafeErrorMessage(auth.ErrMissingToken)
		for _, err := range []error{auth.ErrInvalidToken, auth.ErrExpiredToken, auth.ErrTokenNotYetValid, domain.ErrUnauthorized} {
			assert.Equal(t, want, GetSafeErrorMessage(err))
		}
	})
}

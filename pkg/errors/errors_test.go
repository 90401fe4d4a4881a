package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchError_Error(t *testing.T) {
	t.Run("should include the strategy and cause", func(t *testing.T) {
		err := NewStrategyError("vector", errors.New("connection refused"))
		assert.Equal(t, "strategy 'vector': strategy failed: connection refused", err.Error())
	})

	t.Run("should render plain messages without decoration", func(t *testing.T) {
		err := NewValidationError("company name is required")
		assert.Equal(t, "company name is required", err.Error())
	})
}

func TestMatchError_Unwrap(t *testing.T) {
	cause := errors.New("deadlock detected")
	err := NewPersistenceError("failed to store results", cause)

	assert.ErrorIs(t, err, cause)
}

func TestKindHelpers(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"validation", NewValidationError("bad input"), IsValidationError},
		{"not found", NewNotFoundError("no such request"), IsNotFoundError},
		{"strategy", NewStrategyError("exact", errors.New("boom")), IsStrategyError},
		{"persistence", NewPersistenceError("insert failed", nil), IsPersistenceError},
		{"cancelled", NewCancelledError(errors.New("context deadline exceeded")), IsCancelledError},
		{"conflict", NewConflictError("already resolving"), IsConflictError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.check(tt.err))
			assert.False(t, tt.check(errors.New("plain error")))
		})
	}

	t.Run("should see through wrapping", func(t *testing.T) {
		wrapped := fmt.Errorf("resolving request: %w", NewConflictError("held"))
		assert.True(t, IsConflictError(wrapped))
		assert.False(t, IsValidationError(wrapped))
	})
}

func TestMatchError_ToHTTPError(t *testing.T) {
	tests := []struct {
		name   string
		err    *MatchError
		status int
	}{
		{"validation maps to 400", NewValidationError("bad input"), http.StatusBadRequest},
		{"not found maps to 404", NewNotFoundError("missing"), http.StatusNotFound},
		{"conflict maps to 409", NewConflictError("held"), http.StatusConflict},
		{"cancelled maps to 408", NewCancelledError(nil), http.StatusRequestTimeout},
		{"strategy maps to 500", NewStrategyError("exact", nil), http.StatusInternalServerError},
		{"persistence maps to 500", NewPersistenceError("insert failed", nil), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpErr := tt.err.ToHTTPError()
			require.NotNil(t, httpErr)
			assert.Equal(t, tt.status, httperror.GetStatusCode(httpErr))
		})
	}
}

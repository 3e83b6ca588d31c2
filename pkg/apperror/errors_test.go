package apperror

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	e := New("OBX_001", "Outbox item not found", http.StatusNotFound)
	assert.Equal(t, "[OBX_001] Outbox item not found", e.Error())

	wrapped := Wrap("SYS_001", "Internal database error", http.StatusInternalServerError, errors.New("connection reset"))
	assert.Equal(t, "[SYS_001] Internal database error: connection reset", wrapped.Error())
}

func TestAppError_Unwrap(t *testing.T) {
	inner := errors.New("boom")
	e := InternalError(inner)
	assert.ErrorIs(t, e, inner)
}

func TestErrorConstructors(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		code   string
		status int
	}{
		{"invalid token", ErrInvalidToken(), "SEC_001", http.StatusUnauthorized},
		{"item not found", ErrItemNotFound(), "OBX_001", http.StatusNotFound},
		{"item not dead", ErrItemNotDead(), "OBX_002", http.StatusConflict},
		{"invalid event", ErrInvalidEvent("nope"), "OBX_003", http.StatusBadRequest},
		{"invalid target", ErrInvalidTargetURL("loopback address"), "OBX_004", http.StatusUnprocessableEntity},
		{"database", ErrDatabaseError(errors.New("x")), "SYS_001", http.StatusInternalServerError},
		{"vault", ErrVaultFailure(errors.New("x")), "SYS_002", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.status, tt.err.HTTPStatus)
		})
	}
}

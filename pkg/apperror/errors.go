package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Security & Authentication (SEC) ----

func ErrInvalidToken() *AppError {
	return New("SEC_001", "Invalid or expired token", http.StatusUnauthorized)
}

// ---- Outbox Operations (OBX) ----

func ErrItemNotFound() *AppError {
	return New("OBX_001", "Outbox item not found", http.StatusNotFound)
}

func ErrItemNotDead() *AppError {
	return New("OBX_002", "Outbox item is not dead-lettered", http.StatusConflict)
}

func ErrInvalidEvent(name string) *AppError {
	return New("OBX_003", fmt.Sprintf("Unknown event %q", name), http.StatusBadRequest)
}

func ErrInvalidTargetURL(reason string) *AppError {
	return New("OBX_004", fmt.Sprintf("Invalid webhook target: %s", reason), http.StatusUnprocessableEntity)
}

// ---- System & Infrastructure (SYS) ----

func ErrDatabaseError(err error) *AppError {
	return Wrap("SYS_001", "Internal database error", http.StatusInternalServerError, err)
}

func ErrVaultFailure(err error) *AppError {
	return Wrap("SYS_002", "Secret vault failure", http.StatusInternalServerError, err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns an OBX_003-style validation error.
func Validation(message string) *AppError {
	return New("OBX_003", message, http.StatusBadRequest)
}

package errors

import (
	"errors"
	"fmt"
)

// Stable machine-readable error kinds returned to clients.
const (
	CodeValidation        = "VALIDATION_ERROR"
	CodeUnauthenticated   = "UNAUTHENTICATED"
	CodeForbidden         = "FORBIDDEN"
	CodeNotFound          = "NOT_FOUND"
	CodeConflict          = "CONFLICT"
	CodeIllegalTransition = "ILLEGAL_TRANSITION"
	CodeInvalidCoordinate = "INVALID_COORDINATE"
	CodeUnavailable       = "UNAVAILABLE"
)

var (
	ErrInvalidCredentials      = errors.New("invalid handle or password")
	ErrInvalidToken            = errors.New("invalid or expired token")
	ErrUnauthenticated         = errors.New("authentication required")
	ErrInsufficientPermissions = errors.New("insufficient permissions")

	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("handle, email or phone already registered")

	ErrInvalidInput = errors.New("invalid input data")
	ErrWeakPassword = errors.New("password does not meet requirements")
)

// AppError carries a stable kind code alongside a human-readable message.
// Internal details stay in Err and are never serialized to clients.
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(code, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// CodeOf extracts the machine-readable kind from err, or empty when err is
// not an AppError.
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

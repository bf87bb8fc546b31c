// AngelaMos | 2026
// errors.go

package core

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound     = errors.New("resource not found")
	ErrDuplicateKey = errors.New("duplicate key")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
	ErrRateLimited  = errors.New("rate limited")
)

// AppError carries everything the JSON error envelope needs.
type AppError struct {
	Err        error
	Message    string
	StatusCode int
	Code       string
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

func NewAppError(err error, message string, statusCode int, code string) *AppError {
	return &AppError{
		Err:        err,
		Message:    message,
		StatusCode: statusCode,
		Code:       code,
	}
}

func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

func GetAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func NotFoundError(resource string) *AppError {
	return NewAppError(
		ErrNotFound,
		fmt.Sprintf("%s not found", resource),
		http.StatusNotFound,
		"NOT_FOUND",
	)
}

func ValidationError(message string) *AppError {
	return NewAppError(
		ErrInvalidInput,
		message,
		http.StatusBadRequest,
		"VALIDATION_ERROR",
	)
}

func UnauthorizedError(message string) *AppError {
	if message == "" {
		message = "authentication required"
	}
	return NewAppError(
		ErrUnauthorized,
		message,
		http.StatusUnauthorized,
		"UNAUTHORIZED",
	)
}

func ForbiddenError(message string) *AppError {
	if message == "" {
		message = "insufficient permissions"
	}
	return NewAppError(
		ErrForbidden,
		message,
		http.StatusForbidden,
		"FORBIDDEN",
	)
}

func TokenExpiredError() *AppError {
	return NewAppError(
		ErrTokenExpired,
		"token has expired",
		http.StatusUnauthorized,
		"TOKEN_EXPIRED",
	)
}

func TokenInvalidError() *AppError {
	return NewAppError(
		ErrTokenInvalid,
		"token is invalid",
		http.StatusUnauthorized,
		"TOKEN_INVALID",
	)
}

func InternalError(err error) *AppError {
	return NewAppError(
		err,
		"internal server error",
		http.StatusInternalServerError,
		"INTERNAL_ERROR",
	)
}

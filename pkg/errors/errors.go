package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"camlive/internal/core/domain"
)

// ErrorCode represents application error codes
type ErrorCode string

const (
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"
	ErrCodeConflict     ErrorCode = "CONFLICT"
	ErrCodeRateLimit    ErrorCode = "RATE_LIMIT_EXCEEDED"
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
)

// AppError carries an error code and the HTTP status it maps to.
type AppError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
	Cause      error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func NewAppError(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: httpStatus}
}

func NewInvalidInputError(message string) *AppError {
	return NewAppError(ErrCodeInvalidInput, message, http.StatusBadRequest)
}

func NewNotFoundError(resource string) *AppError {
	return NewAppError(ErrCodeNotFound, fmt.Sprintf("%s not found", resource), http.StatusNotFound)
}

func NewUnauthorizedError(message string) *AppError {
	return NewAppError(ErrCodeUnauthorized, message, http.StatusUnauthorized)
}

func NewForbiddenError(message string) *AppError {
	return NewAppError(ErrCodeForbidden, message, http.StatusForbidden)
}

func NewConflictError(message string) *AppError {
	return NewAppError(ErrCodeConflict, message, http.StatusConflict)
}

func NewInternalError(message string) *AppError {
	return NewAppError(ErrCodeInternal, message, http.StatusInternalServerError)
}

// FromDomain maps a domain error onto an AppError with the HTTP status
// the API contract requires. Token failures are all 401s except a
// vanished identity, which is a 404 on the refresh path.
func FromDomain(err error) *AppError {
	switch {
	case err == nil:
		return nil
	case stderrors.Is(err, domain.ErrTokenExpired):
		return &AppError{Code: ErrCodeUnauthorized, Message: "token expired", HTTPStatus: http.StatusUnauthorized, Cause: err}
	case stderrors.Is(err, domain.ErrTokenMalformed):
		return &AppError{Code: ErrCodeUnauthorized, Message: "invalid token", HTTPStatus: http.StatusUnauthorized, Cause: err}
	case stderrors.Is(err, domain.ErrTokenRevoked):
		return &AppError{Code: ErrCodeUnauthorized, Message: "token is invalid, please login again", HTTPStatus: http.StatusUnauthorized, Cause: err}
	case stderrors.Is(err, domain.ErrIdentityNotFound):
		return &AppError{Code: ErrCodeNotFound, Message: "user not found", HTTPStatus: http.StatusNotFound, Cause: err}
	case stderrors.Is(err, domain.ErrNotAuthenticated):
		return &AppError{Code: ErrCodeUnauthorized, Message: "no token provided", HTTPStatus: http.StatusUnauthorized, Cause: err}
	case stderrors.Is(err, domain.ErrInvalidCredentials):
		return &AppError{Code: ErrCodeUnauthorized, Message: "invalid credentials", HTTPStatus: http.StatusUnauthorized, Cause: err}
	case stderrors.Is(err, domain.ErrForbidden):
		return &AppError{Code: ErrCodeForbidden, Message: "access denied", HTTPStatus: http.StatusForbidden, Cause: err}
	case stderrors.Is(err, domain.ErrUserNotFound):
		return &AppError{Code: ErrCodeNotFound, Message: "user not found", HTTPStatus: http.StatusNotFound, Cause: err}
	case stderrors.Is(err, domain.ErrStreamNotFound):
		return &AppError{Code: ErrCodeNotFound, Message: "stream not found", HTTPStatus: http.StatusNotFound, Cause: err}
	case stderrors.Is(err, domain.ErrPaymentNotFound):
		return &AppError{Code: ErrCodeNotFound, Message: "payment not found", HTTPStatus: http.StatusNotFound, Cause: err}
	case stderrors.Is(err, domain.ErrEmailTaken):
		return &AppError{Code: ErrCodeConflict, Message: "email already registered", HTTPStatus: http.StatusBadRequest, Cause: err}
	case stderrors.Is(err, domain.ErrUsernameTaken):
		return &AppError{Code: ErrCodeConflict, Message: "username already taken", HTTPStatus: http.StatusBadRequest, Cause: err}
	default:
		return &AppError{Code: ErrCodeInternal, Message: "internal server error", HTTPStatus: http.StatusInternalServerError, Cause: err}
	}
}

// GetAppError extracts an AppError from an error chain.
func GetAppError(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return nil
}

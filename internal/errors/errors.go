package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrUserNotFound is returned when no user exists for an identifier.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailAlreadyRegistered is returned when registering a duplicate email.
	ErrEmailAlreadyRegistered = errors.New("email already registered")
	// ErrInvalidCredentials is returned for unknown email or wrong password.
	// The message is deliberately identical for both cases.
	ErrInvalidCredentials = errors.New("wrong email/password")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Message: e.Message,
		Code:    e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrUserNotFound):
		return NewHTTPError(http.StatusNotFound, ErrUserNotFound.Error(), "USER_NOT_FOUND")
	case errors.Is(err, ErrEmailAlreadyRegistered):
		return NewHTTPError(http.StatusConflict, ErrEmailAlreadyRegistered.Error(), "EMAIL_ALREADY_REGISTERED")
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, ErrInvalidCredentials.Error(), "INVALID_CREDENTIALS")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}

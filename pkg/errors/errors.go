package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorType represents different types of application errors
type ErrorType string

const (
	ErrorTypeValidation     ErrorType = "validation"
	ErrorTypeAuthentication ErrorType = "authentication"
	ErrorTypeAuthorization  ErrorType = "authorization"
	ErrorTypeNotFound       ErrorType = "not_found"
	ErrorTypeConflict       ErrorType = "conflict"
	ErrorTypeBusiness       ErrorType = "business"
	ErrorTypeNetwork        ErrorType = "network"
	ErrorTypeInternal       ErrorType = "internal"
)

// GenericMessage is shown when the API gave no usable message.
const GenericMessage = "Something went wrong. Please try again."

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType              `json:"type"`
	Message    string                 `json:"message"`
	StatusCode int                    `json:"status_code"`
	Internal   error                  `json:"-"`
	Details    map[string]interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Internal.Error())
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error
func (e *AppError) Unwrap() error {
	return e.Internal
}

// NewValidationError creates a new validation error
func NewValidationError(message string, details map[string]interface{}) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Details:    details,
	}
}

// NewAuthenticationError creates a new authentication error
func NewAuthenticationError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeAuthentication,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

// NewAuthorizationError creates a new authorization error
func NewAuthorizationError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeAuthorization,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

// NewInternalError creates a new internal error
func NewInternalError(message string, internal error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Internal:   internal,
	}
}

// NewNetworkError wraps a transport failure or timeout talking to the API
func NewNetworkError(internal error) *AppError {
	return &AppError{
		Type:       ErrorTypeNetwork,
		Message:    GenericMessage,
		StatusCode: http.StatusBadGateway,
		Internal:   internal,
	}
}

// apiErrorBody is the error envelope used by the voting API.
type apiErrorBody struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

// FromResponse normalizes a non-2xx API response into an AppError.
// The message comes from the body's "message", then "error", then GenericMessage.
func FromResponse(status int, body []byte) *AppError {
	message := GenericMessage
	var payload apiErrorBody
	if err := json.Unmarshal(body, &payload); err == nil {
		if m := strings.TrimSpace(payload.Message); m != "" {
			message = m
		} else if m := strings.TrimSpace(payload.Error); m != "" {
			message = m
		}
	}

	return &AppError{
		Type:       typeForStatus(status),
		Message:    message,
		StatusCode: status,
	}
}

func typeForStatus(status int) ErrorType {
	switch {
	case status == http.StatusUnauthorized:
		return ErrorTypeAuthentication
	case status == http.StatusForbidden:
		return ErrorTypeAuthorization
	case status == http.StatusNotFound:
		return ErrorTypeNotFound
	case status == http.StatusConflict:
		return ErrorTypeConflict
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return ErrorTypeValidation
	case status >= 500:
		return ErrorTypeInternal
	default:
		return ErrorTypeBusiness
	}
}

// As extracts an *AppError from err.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsAuthFailure reports a 401/403 from the API. Callers clear the session on it.
func IsAuthFailure(err error) bool {
	appErr, ok := As(err)
	if !ok {
		return false
	}
	return appErr.Type == ErrorTypeAuthentication || appErr.Type == ErrorTypeAuthorization
}

// MessageOf returns the user-facing message for err, or fallback.
func MessageOf(err error, fallback string) string {
	if err == nil {
		return ""
	}
	if appErr, ok := As(err); ok && appErr.Message != "" {
		return appErr.Message
	}
	if fallback == "" {
		return GenericMessage
	}
	return fallback
}

package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/feral-file/ff-fractions/internal/domain"
)

// ErrorCode represents a standardized error code
type ErrorCode string

const (
	// Client errors (4xx)
	ErrCodeBadRequest       ErrorCode = "bad_request"
	ErrCodeNotFound         ErrorCode = "not_found"
	ErrCodeValidationFailed ErrorCode = "validation_failed"
	ErrCodeUnauthorized     ErrorCode = "unauthorized"
	ErrCodeForbidden        ErrorCode = "forbidden"
	ErrCodeConflict         ErrorCode = "conflict"
	ErrCodeUnprocessable    ErrorCode = "unprocessable"
	ErrCodeTooManyRequests  ErrorCode = "too_many_requests"

	// Server errors (5xx)
	ErrCodeInternalError ErrorCode = "internal_error"
)

// APIError represents a structured API error that carries error code and details.
// Reason holds the protocol error code when the request was rejected by the protocol.
type APIError struct {
	Code    ErrorCode `json:"code"`
	Reason  string    `json:"reason,omitempty"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	jsonErr, _ := json.Marshal(e)
	return string(jsonErr)
}

// Error constructors for common error types
func NewBadRequestError(message string, details ...string) *APIError {
	return &APIError{
		Code:    ErrCodeBadRequest,
		Message: message,
		Details: strings.Join(details, ", "),
	}
}

func NewNotFoundError(message string, details ...string) *APIError {
	return &APIError{
		Code:    ErrCodeNotFound,
		Message: message,
		Details: strings.Join(details, ", "),
	}
}

func NewValidationError(details ...string) *APIError {
	return &APIError{
		Code:    ErrCodeValidationFailed,
		Message: "Validation failed",
		Details: strings.Join(details, ", "),
	}
}

func NewUnauthorizedError(message string, details ...string) *APIError {
	return &APIError{
		Code:    ErrCodeUnauthorized,
		Message: message,
		Details: strings.Join(details, ", "),
	}
}

func NewTooManyRequestsError(message string, details ...string) *APIError {
	return &APIError{
		Code:    ErrCodeTooManyRequests,
		Message: message,
		Details: strings.Join(details, ", "),
	}
}

func NewForbiddenError(message string, details ...string) *APIError {
	return &APIError{
		Code:    ErrCodeForbidden,
		Message: message,
		Details: strings.Join(details, ", "),
	}
}

func NewInternalError(message string, details ...string) *APIError {
	return &APIError{
		Code:    ErrCodeInternalError,
		Message: message,
		Details: strings.Join(details, ", "),
	}
}

// FromDomainError maps a protocol rejection to its HTTP status and API error.
// ok is false when err carries no protocol error.
func FromDomainError(err error) (status int, apiErr *APIError, ok bool) {
	kind, ok := domain.KindOf(err)
	if !ok {
		return 0, nil, false
	}

	var code ErrorCode
	switch kind {
	case domain.ErrorKindAuthorization:
		status, code = http.StatusForbidden, ErrCodeForbidden
	case domain.ErrorKindStateGate:
		status, code = http.StatusConflict, ErrCodeConflict
	case domain.ErrorKindAccounting:
		status, code = http.StatusUnprocessableEntity, ErrCodeUnprocessable
	case domain.ErrorKindNotFound:
		status, code = http.StatusNotFound, ErrCodeNotFound
	default:
		status, code = http.StatusBadRequest, ErrCodeBadRequest
	}

	return status, &APIError{
		Code:    code,
		Reason:  domain.CodeOf(err),
		Message: err.Error(),
	}, true
}

// ToDomainError rebuilds the protocol error carried by an API error, wrapping the sentinel so
// errors.Is matches on the client side. ok is false when the reason is unknown.
func ToDomainError(apiErr *APIError) (error, bool) {
	if apiErr == nil || apiErr.Reason == "" {
		return nil, false
	}
	sentinel, ok := domain.ErrorByCode(apiErr.Reason)
	if !ok {
		return nil, false
	}
	if apiErr.Message == "" || apiErr.Message == sentinel.Message {
		return sentinel, true
	}
	if rest, found := strings.CutPrefix(apiErr.Message, sentinel.Message); found {
		return fmt.Errorf("%w%s", sentinel, rest), true
	}
	return fmt.Errorf("%w: %s", sentinel, apiErr.Message), true
}

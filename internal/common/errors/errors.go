// Package errors provides standardized error handling for the dashboard and tool server HTTP surfaces.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeMissingParameter ErrorCode = "MISSING_PARAMETER"
	ErrCodeInvalidParameter ErrorCode = "INVALID_PARAMETER"

	ErrCodeUpstreamUnavailable ErrorCode = "UPSTREAM_UNAVAILABLE"
	ErrCodeUpstreamTimeout     ErrorCode = "UPSTREAM_TIMEOUT"
	ErrCodeUpstreamError       ErrorCode = "UPSTREAM_ERROR"

	ErrCodeFeatureQueryFailed ErrorCode = "FEATURE_QUERY_FAILED"
	ErrCodeFeatureQueryError  ErrorCode = "FEATURE_QUERY_ERROR"

	ErrCodeToolNotFound    ErrorCode = "TOOL_NOT_FOUND"
	ErrCodeInvalidToolArgs ErrorCode = "INVALID_TOOL_ARGS"
	ErrCodeToolFailed      ErrorCode = "TOOL_FAILED"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeStoreFailed              ErrorCode = "STORE_FAILED"
	ErrCodeValidationFailed         ErrorCode = "VALIDATION_FAILED"

	ErrCodeCacheFailed   ErrorCode = "CACHE_FAILED"
	ErrCodeInternalError ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code       ErrorCode              `json:"code"`
	Message    string                 `json:"message"`
	Details    string                 `json:"details,omitempty"`
	Retryable  bool                   `json:"retryable"`
	StatusCode int                    `json:"-"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	Timestamp  time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// WithStatus overrides the HTTP status derived from the code.
func (e *StandardError) WithStatus(status int) *StandardError {
	e.StatusCode = status
	return e
}

// WithMetadata attaches a metadata key that is copied into the HTTP envelope.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// ==========================
// 2. Error Constructors
// ==========================

// NewMissingParameterError creates a non-retryable client error.
func NewMissingParameterError(message string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMissingParameter,
		Message:   message,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidParameterError creates a non-retryable client error.
func NewInvalidParameterError(message, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidParameter,
		Message:   message,
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUpstreamUnavailableError creates a retryable error for a backend that could not be reached.
func NewUpstreamUnavailableError(upstream string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeUpstreamUnavailable,
		Message:   fmt.Sprintf("%s request failed", upstream),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewUpstreamTimeoutError creates a retryable timeout error.
func NewUpstreamTimeoutError(upstream string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUpstreamTimeout,
		Message:   fmt.Sprintf("%s request timed out", upstream),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewUpstreamError carries a non-2xx upstream reply. The upstream status is preserved.
func NewUpstreamError(upstream string, status int, body string) *StandardError {
	return &StandardError{
		Code:       ErrCodeUpstreamError,
		Message:    body,
		Details:    fmt.Sprintf("%s returned status %d", upstream, status),
		Retryable:  status >= 500,
		StatusCode: status,
		Timestamp:  time.Now().UTC(),
	}
}

// NewFeatureQueryFailedError is returned when the feature service answers with a non-2xx status.
func NewFeatureQueryFailedError(status int, body string) *StandardError {
	return (&StandardError{
		Code:      ErrCodeFeatureQueryFailed,
		Message:   "ArcGIS request failed",
		Details:   body,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}).WithMetadata("status", status)
}

// NewFeatureQueryError is returned when the feature service embeds an error object in a 200 reply.
func NewFeatureQueryError(detail interface{}) *StandardError {
	return &StandardError{
		Code:      ErrCodeFeatureQueryError,
		Message:   "ArcGIS error",
		Details:   fmt.Sprintf("%v", detail),
		Retryable: false,
		Metadata:  map[string]interface{}{"detail": detail},
		Timestamp: time.Now().UTC(),
	}
}

// NewToolNotFoundError creates a non-retryable tool lookup error.
func NewToolNotFoundError(toolID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeToolNotFound,
		Message:   fmt.Sprintf("Unknown toolId: %s", toolID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidToolArgsError creates a non-retryable argument validation error.
func NewInvalidToolArgsError(toolID, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidToolArgs,
		Message:   fmt.Sprintf("Invalid arguments for tool %s", toolID),
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewToolFailedError wraps a tool execution failure.
func NewToolFailedError(toolID string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeToolFailed,
		Message:   err.Error(),
		Details:   fmt.Sprintf("toolId: %s", toolID),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewStoreFailedError creates a retryable storage error.
func NewStoreFailedError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeStoreFailed,
		Message:   "Storage operation failed",
		Details:   fmt.Sprintf("operation: %s, error: %s", operation, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewValidationFailedError creates a non-retryable payload validation error.
func NewValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "Validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInternalError wraps an unexpected error.
func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternalError,
		Message:   "Server error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Classification helpers
// ==========================

// AsStandardError unwraps err looking for a *StandardError.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// Normalize ensures we always have a StandardError.
func Normalize(err error) *StandardError {
	if stdErr, ok := AsStandardError(err); ok {
		return stdErr
	}
	return NewInternalError(err)
}

// HTTPStatus maps an error code to the status written to clients.
func HTTPStatus(stdErr *StandardError) int {
	if stdErr.StatusCode != 0 {
		return stdErr.StatusCode
	}
	switch stdErr.Code {
	case ErrCodeMissingParameter, ErrCodeInvalidParameter, ErrCodeInvalidToolArgs, ErrCodeValidationFailed:
		return http.StatusBadRequest
	case ErrCodeToolNotFound:
		return http.StatusNotFound
	case ErrCodeUpstreamTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// GetRetryCount returns the recommended retry count for callers of the HTTP API.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeUpstreamUnavailable,
		ErrCodeFeatureQueryFailed,
		ErrCodeDatabaseConnectionFailed,
		ErrCodeStoreFailed,
		ErrCodeToolFailed:
		return 3

	case ErrCodeUpstreamTimeout:
		return 2

	default:
		return 0
	}
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "UPSTREAM"):
		return "UPSTREAM"
	case strings.Contains(codeStr, "FEATURE_QUERY"):
		return "FEATURE_SERVICE"
	case strings.Contains(codeStr, "TOOL"):
		return "TOOL"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "STORE"):
		return "DATABASE"
	case strings.Contains(codeStr, "CACHE"):
		return "CACHE"
	case strings.Contains(codeStr, "PARAMETER") || strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}

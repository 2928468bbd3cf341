// Package errors provides structured error handling for the imgd service.
// It defines error types with codes, messages, causes, and contextual
// information so failures can be mapped to HTTP outcomes at the REST boundary.
package errors

import (
	"fmt"
	"log/slog"
)

// ErrorCode represents a categorized error type for structured error handling.
type ErrorCode string

const (
	ErrCodeValidation ErrorCode = "VALIDATION_ERROR"
	ErrCodeUpstream   ErrorCode = "UPSTREAM_ERROR"
	ErrCodeTransform  ErrorCode = "TRANSFORM_ERROR"
	ErrCodeCacheIO    ErrorCode = "CACHE_IO_ERROR"
	ErrCodeTimeout    ErrorCode = "TIMEOUT_ERROR"
	ErrCodeUnknown    ErrorCode = "UNKNOWN_ERROR"
)

// AppError is a structured application error with code, message, cause, and
// context. It implements the error interface and supports unwrapping.
type AppError struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]interface{}
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for use with errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// LogValue renders the error as structured slog attributes.
func (e *AppError) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("code", string(e.Code)),
		slog.String("message", e.Message),
	}
	if e.Cause != nil {
		attrs = append(attrs, slog.String("cause", e.Cause.Error()))
	}
	for k, v := range e.Context {
		attrs = append(attrs, slog.Any(k, v))
	}
	return slog.GroupValue(attrs...)
}

// UpstreamError creates an AppError for source-image fetch failures.
func UpstreamError(message string, cause error, context map[string]interface{}) *AppError {
	return &AppError{Code: ErrCodeUpstream, Message: message, Cause: cause, Context: context}
}

// TransformError creates an AppError for codec/resize failures.
func TransformError(message string, cause error, context map[string]interface{}) *AppError {
	return &AppError{Code: ErrCodeTransform, Message: message, Cause: cause, Context: context}
}

// CacheIOError creates an AppError for cache store failures.
func CacheIOError(message string, cause error, context map[string]interface{}) *AppError {
	return &AppError{Code: ErrCodeCacheIO, Message: message, Cause: cause, Context: context}
}

// ValidationError creates an AppError for input validation failures.
func ValidationError(message string, context map[string]interface{}) *AppError {
	return &AppError{Code: ErrCodeValidation, Message: message, Context: context}
}

// TimeoutError creates an AppError for timeout-related failures.
func TimeoutError(message string, cause error, context map[string]interface{}) *AppError {
	return &AppError{Code: ErrCodeTimeout, Message: message, Cause: cause, Context: context}
}

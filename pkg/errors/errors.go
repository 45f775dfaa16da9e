package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"

	// Network errors. Downloads are fatal; metadata lookups degrade.
	ErrDownload ErrorCode = "NETWORK_DOWNLOAD"
	ErrMetadata ErrorCode = "NETWORK_METADATA"

	// Archive errors
	ErrArchiveRead     ErrorCode = "ARCHIVE_READ"
	ErrArchiveLayout   ErrorCode = "ARCHIVE_LAYOUT"
	ErrTemplateMissing ErrorCode = "TEMPLATE_MISSING"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"

	// Filesystem errors
	ErrFileNotFound ErrorCode = "FILE_NOT_FOUND"
	ErrFileRead     ErrorCode = "FILE_READ"
	ErrFileWrite    ErrorCode = "FILE_WRITE"
	ErrFileCopy     ErrorCode = "FILE_COPY"
	ErrDirCreate    ErrorCode = "DIR_CREATE"
	ErrMove         ErrorCode = "MOVE"

	// Database errors
	ErrDatabase ErrorCode = "DATABASE"

	// Isolation usage errors. These must stay distinguishable from
	// generic I/O failures so callers can surface "environment not
	// provisioned" instead of a cryptic file-not-found.
	ErrNotProvisioned ErrorCode = "NOT_PROVISIONED"
	ErrNoBaseline     ErrorCode = "NO_BASELINE"
)

// SandpressError represents a structured error with code and details
type SandpressError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *SandpressError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *SandpressError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *SandpressError) Is(target error) bool {
	var targetErr *SandpressError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new SandpressError with the given code and message
func New(code ErrorCode, message string) *SandpressError {
	return &SandpressError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new SandpressError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *SandpressError {
	return &SandpressError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a SandpressError
func Wrap(err error, code ErrorCode, message string) *SandpressError {
	if err == nil {
		return nil
	}
	return &SandpressError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *SandpressError {
	if err == nil {
		return nil
	}
	return &SandpressError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *SandpressError) WithDetail(key string, value interface{}) *SandpressError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var spErr *SandpressError
	if errors.As(err, &spErr) {
		return spErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a SandpressError
func GetErrorCode(err error) ErrorCode {
	var spErr *SandpressError
	if errors.As(err, &spErr) {
		return spErr.Code
	}
	return ErrUnknown
}

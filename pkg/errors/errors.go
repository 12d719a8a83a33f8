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
	ErrUnknown        ErrorCode = "UNKNOWN"
	ErrInternal       ErrorCode = "INTERNAL"
	ErrInvalidInput   ErrorCode = "INVALID_INPUT"
	ErrNotFound       ErrorCode = "NOT_FOUND"
	ErrAlreadyExists  ErrorCode = "ALREADY_EXISTS"
	ErrNotSupported   ErrorCode = "NOT_SUPPORTED"
	ErrCancelled      ErrorCode = "CANCELLED"
	ErrPathInvalid    ErrorCode = "PATH_INVALID"
	ErrGeneratorUnset ErrorCode = "GENERATOR_NOT_FOUND"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"
	ErrConfigValid ErrorCode = "CONFIG_INVALID"

	// Sorting errors
	ErrSortCycle ErrorCode = "SORT_CYCLE"

	// Synchronization errors
	ErrNeedsIngest    ErrorCode = "NEEDS_INGEST"
	ErrStaleState     ErrorCode = "STALE_STATE"
	ErrArchiveMissing ErrorCode = "ARCHIVE_MISSING"
	ErrNoSpace        ErrorCode = "NO_SPACE"
	ErrLoadoutActive  ErrorCode = "LOADOUT_ACTIVE"

	// Store errors
	ErrStoreRead      ErrorCode = "STORE_READ"
	ErrStoreWrite     ErrorCode = "STORE_WRITE"
	ErrRootContention ErrorCode = "ROOT_CONTENTION"

	// FileSystem errors
	ErrFileRead   ErrorCode = "FILE_READ"
	ErrFileWrite  ErrorCode = "FILE_WRITE"
	ErrFileDelete ErrorCode = "FILE_DELETE"
	ErrDirCreate  ErrorCode = "DIR_CREATE"
	ErrExtract    ErrorCode = "EXTRACT"
	ErrIndex      ErrorCode = "INDEX"
)

// ModsyncError represents a structured error with code and details
type ModsyncError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *ModsyncError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *ModsyncError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *ModsyncError) Is(target error) bool {
	var targetErr *ModsyncError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new ModsyncError with the given code and message
func New(code ErrorCode, message string) *ModsyncError {
	return &ModsyncError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new ModsyncError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *ModsyncError {
	return &ModsyncError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a ModsyncError
func Wrap(err error, code ErrorCode, message string) *ModsyncError {
	if err == nil {
		return nil
	}
	return &ModsyncError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *ModsyncError {
	if err == nil {
		return nil
	}
	return &ModsyncError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *ModsyncError) WithDetail(key string, value interface{}) *ModsyncError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// Coded is implemented by domain error types that carry an ErrorCode without
// being a ModsyncError (drift reports, sort cycles).
type Coded interface {
	error
	ErrorCode() ErrorCode
}

// IsErrorCode checks if an error has a specific error code anywhere in its chain
func IsErrorCode(err error, code ErrorCode) bool {
	for err != nil {
		if c, ok := err.(Coded); ok && c.ErrorCode() == code {
			return true
		}
		if modErr, ok := err.(*ModsyncError); ok && modErr.Code == code {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}

// GetErrorCode returns the outermost error code, or ErrUnknown if err carries none
func GetErrorCode(err error) ErrorCode {
	for err != nil {
		if c, ok := err.(Coded); ok {
			return c.ErrorCode()
		}
		if modErr, ok := err.(*ModsyncError); ok {
			return modErr.Code
		}
		err = errors.Unwrap(err)
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a ModsyncError
func GetErrorDetails(err error) map[string]interface{} {
	var modErr *ModsyncError
	if errors.As(err, &modErr) {
		return modErr.Details
	}
	return nil
}

package errors

import (
	"errors"
	"fmt"
)

// Error code constants for everything that can go wrong during a repair run.
const (
	CodeInputNotFound     = "INPUT_NOT_FOUND"
	CodeArchiveInvalid    = "ARCHIVE_INVALID"
	CodeZipBombDetected   = "ZIP_BOMB_DETECTED"
	CodePathTraversal     = "PATH_TRAVERSAL"
	CodeDestinationExists = "DESTINATION_EXISTS"
	CodePermissionDenied  = "PERMISSION_DENIED"
	CodeWriteFailed       = "WRITE_FAILED"
	CodeLocked            = "LOCKED"
)

// Error represents an epubfix error with a code and message.
// It implements the error interface and supports error wrapping.
type Error struct {
	wrapped error
	Code    string
	Message string
}

// Error returns the error message, implementing the error interface.
func (e *Error) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.wrapped)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error, supporting errors.Is and errors.As.
func (e *Error) Unwrap() error {
	return e.wrapped
}

// New creates a new epubfix error with the given code and message.
func New(code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new epubfix error that wraps an underlying error.
func Wrap(code string, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		wrapped: err,
	}
}

// Code extracts the error code from an error.
// Returns an empty string if the error is not an epubfix error.
func Code(err error) string {
	if err == nil {
		return ""
	}
	var fixErr *Error
	if errors.As(err, &fixErr) {
		return fixErr.Code
	}
	return ""
}

// Is checks if an error has a specific error code.
func Is(err error, code string) bool {
	return Code(err) == code
}

// Convenience constructors for each error code

// InputNotFound creates an INPUT_NOT_FOUND error.
func InputNotFound(path string) *Error {
	return New(CodeInputNotFound, fmt.Sprintf("input %q not found or not readable", path))
}

// ArchiveInvalid creates an ARCHIVE_INVALID error.
func ArchiveInvalid(path string) *Error {
	return New(CodeArchiveInvalid, fmt.Sprintf("file %q is not a valid zip archive", path))
}

// ZipBombDetected creates a ZIP_BOMB_DETECTED error.
func ZipBombDetected(reason string) *Error {
	return New(CodeZipBombDetected, fmt.Sprintf("zip bomb detected: %s", reason))
}

// PathTraversal creates a PATH_TRAVERSAL error.
func PathTraversal(path string) *Error {
	return New(CodePathTraversal, fmt.Sprintf("entry %q attempts to escape the archive root", path))
}

// DestinationExists creates a DESTINATION_EXISTS error.
// This is non-fatal: the repair layer reports it as a skip.
func DestinationExists(path string) *Error {
	return New(CodeDestinationExists, fmt.Sprintf("destination %q already exists (use --overwrite to replace)", path))
}

// PermissionDenied creates a PERMISSION_DENIED error wrapping the underlying cause.
func PermissionDenied(path string, err error) *Error {
	return Wrap(CodePermissionDenied, fmt.Sprintf("permission denied for %q", path), err)
}

// WriteFailed creates a WRITE_FAILED error wrapping the underlying cause.
func WriteFailed(err error) *Error {
	return Wrap(CodeWriteFailed, "failed to write output archive", err)
}

// Locked creates a LOCKED error.
func Locked(path string) *Error {
	return New(CodeLocked, fmt.Sprintf("output directory %q is locked by another run", path))
}

// Package errors provides typed error handling for epubfix operations.
//
// Every failure a repair run can hit carries a stable code so callers
// (CLI exit codes, JSON output, MCP tool results) can branch on it.
//
// Example usage:
//
//	// Creating errors
//	err := errors.InputNotFound("/books/broken.epub")
//	err := errors.ZipBombDetected("compression ratio exceeds 100:1")
//
//	// Wrapping errors
//	err := errors.WriteFailed(ioErr)
//
//	// Checking error codes
//	if errors.Is(err, errors.CodeDestinationExists) {
//	    // report a skip, not a failure
//	}
//
//	// Extracting codes
//	code := errors.Code(err)
//	if code == errors.CodeArchiveInvalid {
//	    // handle corrupt input
//	}
//
//	// Stdlib compatibility
//	var fixErr *errors.Error
//	if errors.As(err, &fixErr) {
//	    fmt.Println(fixErr.Code, fixErr.Message)
//	}
package errors

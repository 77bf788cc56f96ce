package model

import "fmt"

// ValidationError reports malformed client input: a bad upload, a missing
// URL, or an unsupported platform.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// NewValidationError builds a ValidationError from a format string.
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// AuthRequiredError reports that the platform needs cookies and no valid
// cookie session exists. Surfaced distinctly from extraction failures so
// the UI can prompt for a re-upload.
type AuthRequiredError struct {
	Platform Platform
}

func (e *AuthRequiredError) Error() string {
	return fmt.Sprintf("%s requires authentication cookies; upload a cookie file first", e.Platform)
}

// ExtractionError reports a failure inside the external extraction library
// (network block, unavailable format, platform-side rejection). The
// underlying message is preserved for the user; no automatic retry.
type ExtractionError struct {
	Platform Platform
	Err      error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction failed for %s: %v", e.Platform, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// StorageError reports a disk write failure. Fatal for the request.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

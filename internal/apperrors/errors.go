package apperrors

import (
	"errors"
	"fmt"
)

// ErrMissingCredentials is returned when no catalog username/password is configured.
var ErrMissingCredentials = errors.New("titlovi credentials are not configured")

// ErrAuthentication is returned when the catalog rejects the stored credentials
// or the token endpoint cannot be reached.
type ErrAuthentication struct {
	Username string
	Err      error
}

// Error implements the error interface.
func (e *ErrAuthentication) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("authentication failed for user %q: %v", e.Username, e.Err)
	}
	return fmt.Sprintf("authentication failed for user %q", e.Username)
}

// Unwrap returns the underlying cause.
func (e *ErrAuthentication) Unwrap() error {
	return e.Err
}

// Is allows for error checking with errors.Is().
func (e *ErrAuthentication) Is(target error) bool {
	_, ok := target.(*ErrAuthentication)
	return ok
}

// NewAuthenticationError creates a new ErrAuthentication.
func NewAuthenticationError(username string, err error) *ErrAuthentication {
	return &ErrAuthentication{Username: username, Err: err}
}

// ErrTransport represents a failed catalog call: a network error or a non-success status.
type ErrTransport struct {
	Op         string // gettoken, validatelogin, search, download
	StatusCode int    // 0 when the request never got a response
	Err        error
}

// Error implements the error interface.
func (e *ErrTransport) Error() string {
	switch {
	case e.StatusCode != 0 && e.Err != nil:
		return fmt.Sprintf("catalog %s returned status %d: %v", e.Op, e.StatusCode, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("catalog %s returned status %d", e.Op, e.StatusCode)
	default:
		return fmt.Sprintf("catalog %s failed: %v", e.Op, e.Err)
	}
}

// Unwrap returns the underlying cause.
func (e *ErrTransport) Unwrap() error {
	return e.Err
}

// Is allows for error checking with errors.Is().
func (e *ErrTransport) Is(target error) bool {
	_, ok := target.(*ErrTransport)
	return ok
}

// NewTransportError creates a new ErrTransport.
func NewTransportError(op string, statusCode int, err error) *ErrTransport {
	return &ErrTransport{Op: op, StatusCode: statusCode, Err: err}
}

// ErrNotFound represents an error when a requested resource is not found.
type ErrNotFound struct {
	Resource string
	ID       interface{}
}

// Error implements the error interface.
func (e *ErrNotFound) Error() string {
	if e.ID != nil {
		return fmt.Sprintf("%s with ID %v not found", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// Is allows for error checking with errors.Is().
func (e *ErrNotFound) Is(target error) bool {
	_, ok := target.(*ErrNotFound)
	return ok
}

// NewNotFoundError creates a new ErrNotFound.
func NewNotFoundError(resource string, id interface{}) *ErrNotFound {
	return &ErrNotFound{
		Resource: resource,
		ID:       id,
	}
}

// ErrSubtitleNotFoundInArchive is returned when no extracted file carries the
// requested season/episode marker.
type ErrSubtitleNotFoundInArchive struct {
	Season    int
	Episode   int
	FileCount int
}

// Error implements the error interface.
func (e *ErrSubtitleNotFoundInArchive) Error() string {
	return fmt.Sprintf("S%02dE%02d not found in archive (searched %d files)", e.Season, e.Episode, e.FileCount)
}

// Is matches both *ErrSubtitleNotFoundInArchive and *ErrNotFound so callers can
// treat a failed disambiguation as a plain not-found.
func (e *ErrSubtitleNotFoundInArchive) Is(target error) bool {
	switch target.(type) {
	case *ErrSubtitleNotFoundInArchive, *ErrNotFound:
		return true
	}
	return false
}

// ErrInvalidIdentifier is returned when a candidate id cannot be decoded.
type ErrInvalidIdentifier struct {
	ID  string
	Err error
}

// Error implements the error interface.
func (e *ErrInvalidIdentifier) Error() string {
	return fmt.Sprintf("invalid subtitle identifier %q: %v", e.ID, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ErrInvalidIdentifier) Unwrap() error {
	return e.Err
}

// Is allows for error checking with errors.Is().
func (e *ErrInvalidIdentifier) Is(target error) bool {
	_, ok := target.(*ErrInvalidIdentifier)
	return ok
}

// NewInvalidIdentifierError creates a new ErrInvalidIdentifier.
func NewInvalidIdentifierError(id string, err error) *ErrInvalidIdentifier {
	return &ErrInvalidIdentifier{ID: id, Err: err}
}

// ErrArchiveTooLarge is returned when an archive expands beyond the configured limits.
type ErrArchiveTooLarge struct {
	Entry string
	Size  uint64
	Limit int64
}

// Error implements the error interface.
func (e *ErrArchiveTooLarge) Error() string {
	if e.Entry != "" {
		return fmt.Sprintf("archive entry %q exceeds maximum uncompressed size (%d > %d bytes)", e.Entry, e.Size, e.Limit)
	}
	return fmt.Sprintf("archive exceeds maximum total uncompressed size (%d > %d bytes)", e.Size, e.Limit)
}

// Is allows for error checking with errors.Is().
func (e *ErrArchiveTooLarge) Is(target error) bool {
	_, ok := target.(*ErrArchiveTooLarge)
	return ok
}

// Package apperr holds the error taxonomy shared by the repository, the
// adapters and the HTTP layer.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

var ErrNotFound = errors.New("not found")

// ValidationError reports a missing or invalid field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func Invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// StorageError wraps a failed read or write against the backing store.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("storage %s: %v", e.Op, e.Err) }
func (e *StorageError) Unwrap() error { return e.Err }

func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}

// UploadError means the image store rejected a blob. Callers creating a
// complaint treat it as a warning.
type UploadError struct {
	Reason string
	Err    error
}

func (e *UploadError) Error() string {
	if e.Err != nil {
		return "upload: " + e.Reason + ": " + e.Err.Error()
	}
	return "upload: " + e.Reason
}
func (e *UploadError) Unwrap() error { return e.Err }

// GeocodeError means every reverse-geocoding provider failed.
type GeocodeError struct {
	Attempts int
	Err      error
}

func (e *GeocodeError) Error() string {
	return fmt.Sprintf("geocode: %d provider(s) failed: %v", e.Attempts, e.Err)
}
func (e *GeocodeError) Unwrap() error { return e.Err }

// ClassificationError means no model produced a usable prediction.
type ClassificationError struct {
	Err error
}

func (e *ClassificationError) Error() string { return "classification: " + e.Err.Error() }
func (e *ClassificationError) Unwrap() error { return e.Err }

// HTTPStatus maps an error to the status code the API answers with.
func HTTPStatus(err error) int {
	var ve *ValidationError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

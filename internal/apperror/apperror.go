// Package apperror defines the application's error taxonomy.
//
// Services return these domain errors; only the HTTP layer maps them to
// status codes. errors.Is works through the chain because AppError
// implements Unwrap.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("validation error")
	ErrConflict        = errors.New("conflict")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrMissingFile     = errors.New("missing file")
	ErrUnsupportedFile = errors.New("unsupported file type")
)

type AppError struct {
	Err     error  // sentinel identifying the kind
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound covers both "no such record" and "record owned by someone else".
// The two cases are deliberately indistinguishable so callers cannot probe
// which ids exist (anti-enumeration, a documented security property of the
// API — see DESIGN.md).
func NotFound(resource string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Conflict(resource, key string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s already exists: %s", resource, key),
	}
}

// Unauthenticated maps to 401. The message passes through whatever the
// token verification reported (missing header, bad signature, expired).
func Unauthenticated(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthenticated,
		Message: message,
	}
}

// MissingFile is returned when an operation requires an uploaded file and
// the request carried none.
func MissingFile() *AppError {
	return &AppError{
		Err:     ErrMissingFile,
		Message: "no file uploaded",
	}
}

// UnsupportedFile rejects a file whose extension is outside the closed set
// {geojson, kml, tiff}.
func UnsupportedFile() *AppError {
	return &AppError{
		Err:     ErrUnsupportedFile,
		Message: "invalid file type, only GeoJSON, KML, and TIFF files are allowed",
	}
}

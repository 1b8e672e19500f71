package apperror

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorsIs(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		target    error
		wantMatch bool
	}{
		{
			name:      "NotFound wraps ErrNotFound",
			err:       NotFound("geodata"),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "ValidationFailed wraps ErrValidation",
			err:       ValidationFailed("email", "email is required"),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "Unauthenticated wraps ErrUnauthenticated",
			err:       Unauthenticated("token is required"),
			target:    ErrUnauthenticated,
			wantMatch: true,
		},
		{
			name:      "MissingFile wraps ErrMissingFile",
			err:       MissingFile(),
			target:    ErrMissingFile,
			wantMatch: true,
		},
		{
			name:      "UnsupportedFile wraps ErrUnsupportedFile",
			err:       UnsupportedFile(),
			target:    ErrUnsupportedFile,
			wantMatch: true,
		},
		{
			name:      "Conflict wraps ErrConflict",
			err:       Conflict("user", "a@b.com"),
			target:    ErrConflict,
			wantMatch: true,
		},
		{
			name:      "NotFound does NOT match ErrValidation",
			err:       NotFound("geodata"),
			target:    ErrValidation,
			wantMatch: false,
		},
		{
			name:      "MissingFile does NOT match ErrUnsupportedFile",
			err:       MissingFile(),
			target:    ErrUnsupportedFile,
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errors.Is(tt.err, tt.target)
			if got != tt.wantMatch {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.target, got, tt.wantMatch)
			}
		})
	}
}

func TestErrorsIs_ThroughWrapping(t *testing.T) {
	// Services wrap with fmt.Errorf("...: %w", err); the sentinel must
	// still be reachable through the whole chain.
	err := fmt.Errorf("creating geodata: %w", NotFound("geodata"))
	if !errors.Is(err, ErrNotFound) {
		t.Error("errors.Is should find ErrNotFound through fmt.Errorf wrapping")
	}

	var appErr *AppError
	if !errors.As(err, &appErr) {
		t.Fatal("errors.As should extract *AppError through wrapping")
	}
	if appErr.Message != "geodata not found" {
		t.Errorf("Message = %q, want %q", appErr.Message, "geodata not found")
	}
}

func TestNotFound_MessageCarriesNoIdentifier(t *testing.T) {
	// The 404 message must not leak whether an id exists but belongs to
	// someone else, so it never includes the id.
	msg := NotFound("geodata").Error()
	if msg != "geodata not found" {
		t.Errorf("NotFound message = %q, want %q", msg, "geodata not found")
	}
}

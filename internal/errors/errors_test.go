package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{name: "nil error", err: nil, expected: ""},
		{name: "simple error", err: errors.New("something went wrong"), expected: "Error: something went wrong"},
		{name: "validation error", err: Invalid("target", "Target weight must be less than current weight"), expected: "Error: Target weight must be less than current weight"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := Format(tt.err); result != tt.expected {
				t.Errorf("Format(%v) = %q, want %q", tt.err, result, tt.expected)
			}
		})
	}
}

func TestFormatf(t *testing.T) {
	if got := Formatf("habit %q not found", "gym"); got != `Error: habit "gym" not found` {
		t.Errorf("Formatf() = %q", got)
	}
}

func TestTaxonomy(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		validation bool
		conflict   bool
		notFound   bool
	}{
		{name: "validation", err: Invalid("date", "cannot log a past date"), validation: true},
		{name: "wrapped validation", err: fmt.Errorf("create goal: %w", Invalid("deadline", "too short")), validation: true},
		{name: "conflict", err: Conflict("Community is full"), conflict: true},
		{name: "not found", err: NotFound("habit", "h1"), notFound: true},
		{name: "plain", err: errors.New("disk full")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if IsValidation(tt.err) != tt.validation {
				t.Errorf("IsValidation() = %v, want %v", !tt.validation, tt.validation)
			}
			if IsConflict(tt.err) != tt.conflict {
				t.Errorf("IsConflict() = %v, want %v", !tt.conflict, tt.conflict)
			}
			if IsNotFound(tt.err) != tt.notFound {
				t.Errorf("IsNotFound() = %v, want %v", !tt.notFound, tt.notFound)
			}
		})
	}

	var ve *ValidationError
	if !errors.As(Invalid("target", "bad"), &ve) || ve.Field != "target" {
		t.Errorf("errors.As did not recover the field, got %+v", ve)
	}
}

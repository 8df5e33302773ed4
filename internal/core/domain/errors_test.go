package domain

import (
	"errors"
	"testing"
)

func TestErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		msg  string
	}{
		{"ErrInvalidInput", ErrInvalidInput, "invalid input"},
		{"ErrConfigUnavailable", ErrConfigUnavailable, "configuration store unavailable"},
		{"ErrDetectorUnavailable", ErrDetectorUnavailable, "detector unavailable"},
		{"ErrDetectorInternal", ErrDetectorInternal, "detector internal error"},
		{"ErrAllDetectorsFailed", ErrAllDetectorsFailed, "all detectors failed"},
		{"ErrChunkingUnavailable", ErrChunkingUnavailable, "semantic chunker unavailable"},
		{"ErrCancelled", ErrCancelled, "request cancelled"},
		{"ErrNotFound", ErrNotFound, "not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Error() != tt.msg {
				t.Errorf("expected %q, got %q", tt.msg, tt.err.Error())
			}
		})
	}
}

func TestErrorsAreDistinct(t *testing.T) {
	allErrors := []error{
		ErrInvalidInput,
		ErrConfigUnavailable,
		ErrDetectorUnavailable,
		ErrDetectorInternal,
		ErrAllDetectorsFailed,
		ErrChunkingUnavailable,
		ErrCancelled,
		ErrNotFound,
	}

	for i, err1 := range allErrors {
		for j, err2 := range allErrors {
			if i != j && errors.Is(err1, err2) {
				t.Errorf("errors should be distinct: %v and %v", err1, err2)
			}
		}
	}
}

func TestErrorsIs(t *testing.T) {
	if !errors.Is(ErrInvalidInput, ErrInvalidInput) {
		t.Error("ErrInvalidInput should match itself")
	}

	if errors.Is(ErrInvalidInput, ErrCancelled) {
		t.Error("ErrInvalidInput should not match ErrCancelled")
	}
}

package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNotFoundError(t *testing.T) {
	err := NewNotFound("input file", "chart.svg")
	want := "input file not found: chart.svg"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if !errors.Is(err, ErrNotFound) {
		t.Error("NotFoundError should unwrap to ErrNotFound")
	}
}

func TestNotFoundError_NoID(t *testing.T) {
	err := &NotFoundError{Resource: "run"}
	want := "run not found"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestNotFoundError_UnderlyingError(t *testing.T) {
	inner := errors.New("stat failed")
	err := &NotFoundError{Resource: "input file", ID: "a.svg", Err: inner}
	if !errors.Is(err, inner) {
		t.Error("should unwrap to the underlying error when one is set")
	}
}

func TestValidationError(t *testing.T) {
	err := NewValidation("output", "path is a directory")
	want := "validation failed for output: path is a directory"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if !errors.Is(err, ErrInvalidInput) {
		t.Error("ValidationError should unwrap to ErrInvalidInput")
	}
}

func TestIOError(t *testing.T) {
	inner := errors.New("disk full")
	err := NewIO("write", "/tmp/out.svg", inner)
	want := "failed to write /tmp/out.svg: disk full"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if !errors.Is(err, inner) {
		t.Error("IOError should unwrap to the underlying error")
	}
}

func TestParseError(t *testing.T) {
	err := NewParse("JSON", "results.json", "unexpected end of input")
	want := "failed to parse JSON at results.json: unexpected end of input"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if !errors.Is(err, ErrInvalidInput) {
		t.Error("ParseError should unwrap to ErrInvalidInput")
	}
}

func TestErrorsAs(t *testing.T) {
	var target *NotFoundError
	err := fmt.Errorf("canonicalize: %w", NewNotFound("input file", "x.svg"))
	if !errors.As(err, &target) {
		t.Fatal("errors.As should find the wrapped NotFoundError")
	}
	if target.ID != "x.svg" {
		t.Errorf("target.ID = %q, want %q", target.ID, "x.svg")
	}
}

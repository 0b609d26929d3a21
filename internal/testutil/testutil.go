// Package testutil provides helper functions for testing unreach components.
package testutil

import (
	"testing"

	"github.com/kiron0/unreach/domain"
	"github.com/kiron0/unreach/internal/parser"
)

// ParseSource parses source as path into a FileSummary, failing the test on error.
func ParseSource(t *testing.T, path, source string) *domain.FileSummary {
	t.Helper()
	p := parser.NewParser()
	defer p.Close()

	fs, err := p.ParseSource(path, []byte(source))
	if err != nil {
		t.Fatalf("failed to parse test source: %v", err)
	}
	return fs
}

// ParseSourceNoFail parses source, returning the error instead of failing.
func ParseSourceNoFail(path, source string) (*domain.FileSummary, error) {
	p := parser.NewParser()
	defer p.Close()
	return p.ParseSource(path, []byte(source))
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("Expected error but got nil")
	}
}

// AssertEqual fails the test if expected != actual.
func AssertEqual(t *testing.T, expected, actual any) {
	t.Helper()
	if expected != actual {
		t.Errorf("Expected %v, got %v", expected, actual)
	}
}

// AssertTrue fails the test if condition is false.
func AssertTrue(t *testing.T, condition bool, msg string) {
	t.Helper()
	if !condition {
		t.Error(msg)
	}
}

// AssertFalse fails the test if condition is true.
func AssertFalse(t *testing.T, condition bool, msg string) {
	t.Helper()
	if condition {
		t.Error(msg)
	}
}

// AssertNotNil fails the test if value is nil.
func AssertNotNil(t *testing.T, value any) {
	t.Helper()
	if value == nil {
		t.Error("Expected non-nil value")
	}
}

// AssertNil fails the test if value is not nil.
func AssertNil(t *testing.T, value any) {
	t.Helper()
	if value != nil {
		t.Errorf("Expected nil, got %v", value)
	}
}

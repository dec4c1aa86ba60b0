package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestDomainError(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		err := New(CodeNotFound, "Veryl.toml not found")
		if err.Error() != "[NOT_FOUND] Veryl.toml not found" {
			t.Errorf("expected [NOT_FOUND] Veryl.toml not found, got %s", err.Error())
		}
	})

	t.Run("Newf", func(t *testing.T) {
		err := Newf(CodeParseError, "%s:%d: unexpected token", "top.veryl", 3)
		if err.Error() != "[PARSE_ERROR] top.veryl:3: unexpected token" {
			t.Errorf("unexpected message %s", err.Error())
		}
	})

	t.Run("Wrap", func(t *testing.T) {
		original := errors.New("original error")
		err := Wrap(original, CodeInternal, "internal failure")
		expected := "[INTERNAL_ERROR] internal failure: original error"
		if err.Error() != expected {
			t.Errorf("expected %s, got %s", expected, err.Error())
		}
		if !errors.Is(err, original) {
			t.Error("expected wrapped error to unwrap to original")
		}
	})

	t.Run("IsCode", func(t *testing.T) {
		err := New(CodeValidationError, "invalid input")
		if !IsCode(err, CodeValidationError) {
			t.Error("expected IsCode to return true for CodeValidationError")
		}
		if IsCode(err, CodeNotFound) {
			t.Error("expected IsCode to return false for CodeNotFound")
		}
	})

	t.Run("IsCodeThroughFmtWrap", func(t *testing.T) {
		err := fmt.Errorf("load: %w", New(CodeParseError, "bad toml"))
		if !IsCode(err, CodeParseError) {
			t.Error("expected IsCode to see through fmt wrapping")
		}
		if CodeOf(err) != CodeParseError {
			t.Errorf("expected PARSE_ERROR, got %s", CodeOf(err))
		}
	})

	t.Run("CodeOfPlainError", func(t *testing.T) {
		if CodeOf(errors.New("boom")) != CodeInternal {
			t.Error("expected plain errors to map to INTERNAL_ERROR")
		}
	})

	t.Run("AddContext", func(t *testing.T) {
		err := AddContext(New(CodeValidationError, "bad name"), CtxField, "project.name")
		if err.Error() != "[VALIDATION_ERROR] bad name map[field:project.name]" {
			t.Errorf("unexpected message %s", err.Error())
		}

		plain := AddContext(errors.New("boom"), CtxPath, "a.veryl")
		if !IsCode(plain, CodeInternal) {
			t.Error("expected plain error to be wrapped as internal")
		}
	})
}

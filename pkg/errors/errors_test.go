package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	err := NewAppError(ErrCodeInvalidInput, "test error", 400)
	expected := "INVALID_INPUT: test error"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestAppError_WithCause(t *testing.T) {
	originalErr := errors.New("original error")
	err := WrapError(originalErr, ErrCodeInternal, "wrapped error", 500)

	if err.Cause != originalErr {
		t.Errorf("Cause = %v, want %v", err.Cause, originalErr)
	}

	if !strings.Contains(err.Error(), "original error") {
		t.Errorf("Error() should contain cause, got: %v", err.Error())
	}
}

func TestAppError_WithContext(t *testing.T) {
	err := NewAppError(ErrCodeInvalidInput, "test error", 400)
	err.WithContext("field", "value").WithContext("count", 42)

	if err.Context["field"] != "value" {
		t.Errorf("Context[field] = %v, want 'value'", err.Context["field"])
	}
	if err.Context["count"] != 42 {
		t.Errorf("Context[count] = %v, want 42", err.Context["count"])
	}
}

func TestNewInvalidInputError(t *testing.T) {
	err := NewInvalidInputError("invalid input")
	if err.Code != ErrCodeInvalidInput {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidInput)
	}
	if err.HTTPStatus != 400 {
		t.Errorf("HTTPStatus = %v, want 400", err.HTTPStatus)
	}
}

func TestNewBackendUnavailableError(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := NewBackendUnavailableError(cause)
	if err.Code != ErrCodeBackendUnavailable {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeBackendUnavailable)
	}
	if err.HTTPStatus != 503 {
		t.Errorf("HTTPStatus = %v, want 503", err.HTTPStatus)
	}
	if !errors.Is(err, cause) {
		t.Errorf("expected wrapped cause to survive errors.Is")
	}
}

func TestGetAppError_Unwraps(t *testing.T) {
	inner := NewNotFoundError("room")
	wrapped := WrapError(inner, ErrCodeInternal, "outer", 500)

	got := GetAppError(wrapped)
	if got == nil || got.Code != ErrCodeInternal {
		t.Errorf("GetAppError = %v, want outer error", got)
	}
	if GetAppError(errors.New("plain")) != nil {
		t.Errorf("GetAppError on plain error should be nil")
	}
}

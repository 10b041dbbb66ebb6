package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeUnknownColumn, "column %q not found", "venue")

	if err.Code != ErrCodeUnknownColumn {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeUnknownColumn)
	}

	if err.Message != `column "venue" not found` {
		t.Errorf("Message = %v, want %v", err.Message, `column "venue" not found`)
	}

	expected := `UNKNOWN_COLUMN: column "venue" not found`
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("wasm init failed")
	err := Wrap(ErrCodeRendererUnavailable, cause, "init graphviz")

	if err.Code != ErrCodeRendererUnavailable {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeRendererUnavailable)
	}
	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if unwrapped := errors.Unwrap(err); unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}

	want := "RENDERER_UNAVAILABLE: init graphviz: wasm init failed"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{
			name:     "matching code",
			err:      New(ErrCodeUnknownNode, "test"),
			code:     ErrCodeUnknownNode,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeUnknownNode, "test"),
			code:     ErrCodeDragFinished,
			expected: false,
		},
		{
			name:     "wrapped with fmt",
			err:      fmt.Errorf("outer: %w", New(ErrCodeInvalidFormat, "inner")),
			code:     ErrCodeInvalidFormat,
			expected: true,
		},
		{
			name:     "non-Error type",
			err:      errors.New("plain error"),
			code:     ErrCodeInvalidInput,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			code:     ErrCodeInvalidInput,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(New(ErrCodeNoDrag, "x")); got != ErrCodeNoDrag {
		t.Errorf("GetCode() = %v, want %v", got, ErrCodeNoDrag)
	}
	if got := GetCode(errors.New("plain")); got != "" {
		t.Errorf("GetCode() = %v, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"structured", New(ErrCodeFileNotFound, "papers.csv does not exist"), "papers.csv does not exist"},
		{"plain", errors.New("boom"), "boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.want {
				t.Errorf("UserMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorClass_String(t *testing.T) {
	tests := []struct {
		class    ErrorClass
		expected string
	}{
		{ErrorTransient, "transient"},
		{ErrorInvalid, "invalid"},
		{ErrorFatal, "fatal"},
		{ErrorClass(999), "unknown"},
	}

	for _, test := range tests {
		t.Run(test.expected, func(t *testing.T) {
			result := test.class.String()
			if result != test.expected {
				t.Errorf("expected %s, got %s", test.expected, result)
			}
		})
	}
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"connection timeout", ErrConnectionTimeout, true},
		{"connection lost", ErrConnectionLost, true},
		{"no connection", ErrNoConnection, true},
		{"context deadline exceeded", context.DeadlineExceeded, true},
		{"context canceled", context.Canceled, true},
		{"not found", ErrNotFound, false},
		{"io", ErrIO, false},
		{"timeout in message", fmt.Errorf("operation timeout occurred"), true},
		{"classified transient", &ClassifiedError{Class: ErrorTransient, Err: fmt.Errorf("test")}, true},
		{"classified fatal", &ClassifiedError{Class: ErrorFatal, Err: fmt.Errorf("test")}, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result := IsTransient(test.err)
			if result != test.expected {
				t.Errorf("expected %v, got %v for error: %v", test.expected, result, test.err)
			}
		})
	}
}

func TestIsFatal(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"io", ErrIO, true},
		{"wrapped io", fmt.Errorf("open: %w", ErrIO), true},
		{"disk full message", fmt.Errorf("write: no space left on device"), true},
		{"query", ErrQueryFailed, false},
		{"classified fatal", &ClassifiedError{Class: ErrorFatal, Err: fmt.Errorf("test")}, true},
		{"classified invalid", &ClassifiedError{Class: ErrorInvalid, Err: ErrIO}, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if result := IsFatal(test.err); result != test.expected {
				t.Errorf("expected %v, got %v for error: %v", test.expected, result, test.err)
			}
		})
	}
}

func TestIsInvalid(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"invalid config", ErrInvalidConfig, true},
		{"missing config", ErrMissingConfig, true},
		{"query", ErrQueryFailed, true},
		{"ambiguous", ErrAmbiguousMatch, true},
		{"not found", ErrNotFound, true},
		{"unsupported", ErrUnsupportedResult, true},
		{"content shape", ErrContentShape, true},
		{"io", ErrIO, false},
		{"plain", fmt.Errorf("something"), false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if result := IsInvalid(test.err); result != test.expected {
				t.Errorf("expected %v, got %v for error: %v", test.expected, result, test.err)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected ErrorClass
	}{
		{"nil", nil, ErrorTransient},
		{"not found", ErrNotFound, ErrorInvalid},
		{"io", ErrIO, ErrorFatal},
		{"connection", ErrConnectionLost, ErrorTransient},
		{"unknown", fmt.Errorf("mystery"), ErrorTransient},
		{"wrapped fatal keeps class", WrapFatal(ErrNotFound, "C", "M", "a"), ErrorFatal},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if result := Classify(test.err); result != test.expected {
				t.Errorf("expected %v, got %v", test.expected, result)
			}
		})
	}
}

func TestKind(t *testing.T) {
	tests := []struct {
		err      error
		expected string
	}{
		{nil, "none"},
		{ErrMissingConfig, "configuration"},
		{ErrInvalidConfig, "configuration"},
		{ErrAmbiguousMatch, "query"},
		{ErrQueryFailed, "query"},
		{ErrNotFound, "not_found"},
		{ErrUnsupportedResult, "unsupported_result"},
		{ErrContentShape, "content_shape"},
		{WrapFatal(ErrIO, "C", "M", "a"), "io"},
		{ErrParsingFailed, "parse"},
		{fmt.Errorf("x"), "other"},
	}

	for _, test := range tests {
		t.Run(test.expected, func(t *testing.T) {
			if got := Kind(test.err); got != test.expected {
				t.Errorf("expected %s, got %s", test.expected, got)
			}
		})
	}
}

func TestClassifiedError(t *testing.T) {
	baseErr := fmt.Errorf("base error")
	ce := &ClassifiedError{
		Class:     ErrorFatal,
		Err:       baseErr,
		Message:   "custom message",
		Component: "test-component",
		Operation: "test-operation",
	}

	if ce.Error() != "custom message" {
		t.Errorf("expected 'custom message', got %s", ce.Error())
	}
	if !errors.Is(ce, baseErr) {
		t.Error("ClassifiedError should unwrap to base error")
	}

	noMsg := &ClassifiedError{Class: ErrorInvalid, Err: baseErr}
	if noMsg.Error() != "base error" {
		t.Errorf("expected 'base error', got %s", noMsg.Error())
	}
}

func TestWrap(t *testing.T) {
	if Wrap(nil, "C", "M", "a") != nil {
		t.Error("wrapping nil should return nil")
	}

	err := Wrap(ErrNotFound, "WriteBinaryFile", "Mediate", "locate binary node")
	expected := "WriteBinaryFile.Mediate: locate binary node failed: no match found"
	if err.Error() != expected {
		t.Errorf("expected %q, got %q", expected, err.Error())
	}
	if !errors.Is(err, ErrNotFound) {
		t.Error("wrapped error should match sentinel")
	}
}

func TestWrapClassified(t *testing.T) {
	tests := []struct {
		name  string
		wrap  func(error, string, string, string) error
		class ErrorClass
	}{
		{"transient", WrapTransient, ErrorTransient},
		{"invalid", WrapInvalid, ErrorInvalid},
		{"fatal", WrapFatal, ErrorFatal},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if test.wrap(nil, "C", "M", "a") != nil {
				t.Fatal("wrapping nil should return nil")
			}

			err := test.wrap(ErrContentShape, "Comp", "Method", "action")
			var ce *ClassifiedError
			if !errors.As(err, &ce) {
				t.Fatalf("expected ClassifiedError, got %T", err)
			}
			if ce.Class != test.class {
				t.Errorf("expected class %v, got %v", test.class, ce.Class)
			}
			if ce.Component != "Comp" || ce.Operation != "Method" {
				t.Errorf("unexpected component/operation: %s/%s", ce.Component, ce.Operation)
			}
			if !errors.Is(err, ErrContentShape) {
				t.Error("classified error should unwrap to sentinel")
			}
		})
	}
}

func TestDetail(t *testing.T) {
	err := Detail(ErrNotFound, "binary element %q matched nothing", "//image")
	if !errors.Is(err, ErrNotFound) {
		t.Fatal("detail should keep sentinel")
	}
	if !strings.Contains(err.Error(), `"//image"`) {
		t.Errorf("detail should name the query, got %q", err.Error())
	}
}

func TestAmbiguousMatchIsQueryError(t *testing.T) {
	if !errors.Is(ErrAmbiguousMatch, ErrQueryFailed) {
		t.Error("ambiguous match must be a query error")
	}
}

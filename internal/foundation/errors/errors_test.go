package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassifiedError(t *testing.T) {
	t.Run("Basic error creation", func(t *testing.T) {
		err := NewError(CategoryConfig, "invalid configuration").
			WithSeverity(SeverityFatal).
			WithContext("file", "sidebargen.yaml").
			Build()

		if err.Category() != CategoryConfig {
			t.Errorf("expected category %s, got %s", CategoryConfig, err.Category())
		}
		if err.Severity() != SeverityFatal {
			t.Errorf("expected severity %s, got %s", SeverityFatal, err.Severity())
		}
		if err.Message() != "invalid configuration" {
			t.Errorf("expected message 'invalid configuration', got %s", err.Message())
		}

		file, exists := err.Context().GetString("file")
		if !exists || file != "sidebargen.yaml" {
			t.Errorf("expected context file=sidebargen.yaml, got %v", file)
		}
	})

	t.Run("Detection through wrapping", func(t *testing.T) {
		err := SpecError("load api description").Build()
		wrapped := fmt.Errorf("stage load_specs: %w", err)

		classified, ok := AsClassified(wrapped)
		if !ok {
			t.Fatal("expected wrapped error to be classified")
		}
		if !classified.IsFatal() {
			t.Error("expected spec error to be fatal")
		}
		if classified.CanRetry() {
			t.Error("expected spec error to not be retryable")
		}
		if !HasCategory(wrapped, CategorySpec) {
			t.Error("expected spec category")
		}
	})

	t.Run("Unclassified defaults", func(t *testing.T) {
		err := errors.New("plain")
		if GetCategory(err) != CategoryInternal {
			t.Errorf("expected internal category, got %s", GetCategory(err))
		}
		if GetSeverity(err) != SeverityError {
			t.Errorf("expected error severity, got %s", GetSeverity(err))
		}
	})
}

func TestErrorBuilder(t *testing.T) {
	t.Run("Fluent API", func(t *testing.T) {
		originalErr := errors.New("connection refused")
		err := WrapError(originalErr, CategoryNetwork, "fetch api description").
			Warning().
			Retryable().
			WithContext("url", "https://example.com/openapi.json").
			Build()

		if err.Severity() != SeverityWarning {
			t.Errorf("expected severity %s, got %s", SeverityWarning, err.Severity())
		}
		if err.RetryStrategy() != RetryBackoff {
			t.Errorf("expected retry strategy %s, got %s", RetryBackoff, err.RetryStrategy())
		}
		if !errors.Is(err, originalErr) {
			t.Error("expected error to wrap original error")
		}
	})

	t.Run("Convenience constructors", func(t *testing.T) {
		tests := []struct {
			name     string
			builder  *ErrorBuilder
			category ErrorCategory
			severity ErrorSeverity
			retry    RetryStrategy
		}{
			{"ConfigError", ConfigError("test"), CategoryConfig, SeverityFatal, RetryUserAction},
			{"ValidationError", ValidationError("test"), CategoryValidation, SeverityFatal, RetryNever},
			{"SpecError", SpecError("test"), CategorySpec, SeverityFatal, RetryUserAction},
			{"NavigationError", NavigationError("test"), CategoryNavigation, SeverityFatal, RetryNever},
			{"ContentError", ContentError("test"), CategoryContent, SeverityFatal, RetryNever},
			{"RegistryError", RegistryError("test"), CategoryRegistry, SeverityFatal, RetryNever},
			{"FileSystemError", FileSystemError("test"), CategoryFileSystem, SeverityError, RetryBackoff},
			{"NetworkError", NetworkError("test"), CategoryNetwork, SeverityError, RetryBackoff},
			{"HistoryError", HistoryError("test"), CategoryHistory, SeverityError, RetryNever},
			{"InternalError", InternalError("test"), CategoryInternal, SeverityFatal, RetryNever},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				err := tt.builder.Build()
				if err.Category() != tt.category {
					t.Errorf("expected category %s, got %s", tt.category, err.Category())
				}
				if err.Severity() != tt.severity {
					t.Errorf("expected severity %s, got %s", tt.severity, err.Severity())
				}
				if err.RetryStrategy() != tt.retry {
					t.Errorf("expected retry strategy %s, got %s", tt.retry, err.RetryStrategy())
				}
			})
		}
	})
}

func TestErrorContext(t *testing.T) {
	ctx1 := ErrorContext{}.Set("key1", "value1").Set("shared", "original")
	ctx2 := ErrorContext{}.Set("key2", 42).Set("shared", "overridden")

	merged := ctx1.Merge(ctx2)

	if v, _ := merged.GetString("key1"); v != "value1" {
		t.Errorf("expected key1=value1, got %s", v)
	}
	if v, _ := merged.Get("key2"); v != 42 {
		t.Errorf("expected key2=42, got %v", v)
	}
	if v, _ := merged.GetString("shared"); v != "overridden" {
		t.Errorf("expected shared=overridden, got %s", v)
	}
	if _, ok := merged.Get("missing"); ok {
		t.Error("expected missing key to not exist")
	}
}

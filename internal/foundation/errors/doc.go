// Package errors provides foundational, type-safe error primitives used across sidebargen.
//
// This package contains classified error types and helpers for error handling,
// including a fluent builder API for constructing ClassifiedError values with context.
//
// Key features:
//   - ErrorCategory: Broad error classification (config, spec, navigation, registry, etc.)
//   - ErrorSeverity: Impact level (fatal, error, warning, info)
//   - ClassifiedError: Structured error with category, severity, and context
//   - ErrorBuilder: Fluent API for creating classified errors
//   - CLI adapter for exit codes and error presentation
//
// Example usage:
//
//	err := errors.SpecError("load api description").
//		WithContext("spec", source).
//		WithCause(parseErr).
//		Build()
package errors

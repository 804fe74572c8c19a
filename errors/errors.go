// Package errors provides the typed errors used across incomelens.
// Load and schema errors are fatal at startup, render errors stay attached to
// the single chart that produced them, validation errors map to HTTP 400.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// New is the standard library errors.New.
var New = errors.New

// Is and As forward to the standard library so callers need a single import.
var (
	Is = errors.Is
	As = errors.As
)

// Sentinel errors.
var (
	// ErrInvalidInput indicates that request parameters were invalid.
	ErrInvalidInput = errors.New("invalid input")

	// ErrSchemaMismatch indicates that the dataset does not carry the expected columns.
	ErrSchemaMismatch = errors.New("schema mismatch")

	// ErrLoad indicates that the dataset could not be loaded.
	ErrLoad = errors.New("dataset load failed")

	// ErrRender indicates that a chart could not be produced from the selected columns.
	ErrRender = errors.New("render failed")

	// ErrNotFound indicates that a requested resource was not found.
	ErrNotFound = errors.New("not found")
)

// LoadError represents a failure while reading the dataset.
type LoadError struct {
	Path    string
	Row     int // 1-based data row, 0 when not row specific
	Column  string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	var b strings.Builder
	b.WriteString("load")
	if e.Path != "" {
		fmt.Fprintf(&b, " %s", e.Path)
	}
	if e.Row > 0 {
		fmt.Fprintf(&b, " row %d", e.Row)
	}
	if e.Column != "" {
		fmt.Fprintf(&b, " column %s", e.Column)
	}
	fmt.Fprintf(&b, ": %s", e.Message)
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Unwrap implements errors.Unwrap.
func (e *LoadError) Unwrap() error { return e.Err }

// Is implements errors.Is support.
func (e *LoadError) Is(target error) bool { return target == ErrLoad }

// NewLoadError creates a new LoadError.
func NewLoadError(path, message string, err error) *LoadError {
	return &LoadError{Path: path, Message: message, Err: err}
}

// SchemaError lists the source columns absent from the dataset.
type SchemaError struct {
	Missing []string
}

// Error implements the error interface.
func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema mismatch: missing columns %s", strings.Join(e.Missing, ", "))
}

// Is implements errors.Is support.
func (e *SchemaError) Is(target error) bool {
	return target == ErrSchemaMismatch || target == ErrLoad
}

// NewSchemaError creates a new SchemaError.
func NewSchemaError(missing []string) *SchemaError {
	return &SchemaError{Missing: missing}
}

// ValidationError represents an invalid request parameter.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support.
func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// RenderError is attached to a single chart when its column selection cannot be plotted.
type RenderError struct {
	Chart   string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *RenderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("render %s: %s: %v", e.Chart, e.Message, e.Err)
	}
	return fmt.Sprintf("render %s: %s", e.Chart, e.Message)
}

// Unwrap implements errors.Unwrap.
func (e *RenderError) Unwrap() error { return e.Err }

// Is implements errors.Is support.
func (e *RenderError) Is(target error) bool { return target == ErrRender }

// NewRenderError creates a new RenderError.
func NewRenderError(chart, message string) *RenderError {
	return &RenderError{Chart: chart, Message: message}
}

// ConfigError represents a configuration error.
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap.
func (e *ConfigError) Unwrap() error { return e.Err }

// NewConfigError creates a new ConfigError.
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{Component: component, Message: message, Err: err}
}

// IsValidationError checks if an error is a validation error.
func IsValidationError(err error) bool { return errors.Is(err, ErrInvalidInput) }

// IsSchemaMismatch checks if an error reports missing dataset columns.
func IsSchemaMismatch(err error) bool { return errors.Is(err, ErrSchemaMismatch) }

// IsRenderError checks if an error is chart-local.
func IsRenderError(err error) bool { return errors.Is(err, ErrRender) }

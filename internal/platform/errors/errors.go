// Package errors provides error types and utilities for urlsift.
// It extends the standard errors package with additional context and wrapping capabilities.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure scenarios
var (
	// ErrCancelled indicates a run was stopped on request before producing a result
	ErrCancelled = errors.New("run cancelled")

	// ErrInvalidInput indicates invalid input was provided
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoInput indicates the URL list was empty after discarding blank lines
	ErrNoInput = errors.New("no URLs to process")

	// ErrDecode indicates a text file could not be decoded with any supported encoding
	ErrDecode = errors.New("unable to detect file encoding")

	// ErrNoResult indicates there is no computed result to export
	ErrNoResult = errors.New("no result to export")

	// ErrInvalidConfig indicates configuration failed validation
	ErrInvalidConfig = errors.New("invalid configuration")
)

// wrappedError wraps an error with additional context
type wrappedError struct {
	msg   string
	cause error
}

// Error implements the error interface
func (e *wrappedError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.cause)
	}
	return e.msg
}

// Unwrap returns the underlying error
func (e *wrappedError) Unwrap() error {
	return e.cause
}

// Wrap wraps an error with additional context message.
// If err is nil, Wrap returns nil.
//
// Example:
//
//	data, err := os.ReadFile(path)
//	if err != nil {
//	    return errors.Wrap(err, "failed to read input")
//	}
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return &wrappedError{
		msg:   msg,
		cause: err,
	}
}

// Wrapf wraps an error with a formatted context message.
// If err is nil, Wrapf returns nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &wrappedError{
		msg:   fmt.Sprintf(format, args...),
		cause: err,
	}
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target type.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Unwrap returns the result of calling the Unwrap method on err.
func Unwrap(err error) error {
	return errors.Unwrap(err)
}

// New creates a new error with the given message.
func New(msg string) error {
	return errors.New(msg)
}

// Errorf formats according to a format specifier and returns the string as a value that satisfies error.
func Errorf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}

// Join returns an error that wraps the given errors.
// Any nil error values are discarded.
func Join(errs ...error) error {
	return errors.Join(errs...)
}

// IsCancelled reports whether the error is a cancellation
func IsCancelled(err error) bool {
	return Is(err, ErrCancelled)
}

// IsInvalidInput reports whether the error is an invalid input error
func IsInvalidInput(err error) bool {
	return Is(err, ErrInvalidInput)
}

// IsNoInput reports whether the error signals an empty URL list
func IsNoInput(err error) bool {
	return Is(err, ErrNoInput)
}

// IsDecode reports whether the error is an encoding detection failure
func IsDecode(err error) bool {
	return Is(err, ErrDecode)
}

// IsNoResult reports whether the error signals a missing result
func IsNoResult(err error) bool {
	return Is(err, ErrNoResult)
}

// IsInvalidConfig reports whether the error is a configuration validation failure
func IsInvalidConfig(err error) bool {
	return Is(err, ErrInvalidConfig)
}

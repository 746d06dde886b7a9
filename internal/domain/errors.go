package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors - use with errors.Is()
var (
	// ErrUnsupportedFormat means no converter claimed the input. This is the
	// only hard failure dispatch surfaces to the caller.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrConverterFailed wraps an individual converter's internal failure.
	// Dispatch records these and continues; they never abort a dispatch.
	ErrConverterFailed = errors.New("converter failed")
)

// ConverterAttempt records one failed converter invocation during dispatch.
type ConverterAttempt struct {
	Converter string
	Extension string
	Err       error
}

// UnsupportedFormatError is returned when every candidate extension has been
// tried against every registered converter without producing a result. It
// carries the failures encountered along the way for diagnostics.
type UnsupportedFormatError struct {
	Path       string
	Extensions []string
	Attempts   []ConverterAttempt
}

// Error implements the error interface
func (e *UnsupportedFormatError) Error() string {
	msg := fmt.Sprintf("no converter for %s (tried extensions: %s)",
		e.Path, strings.Join(e.Extensions, ", "))
	if len(e.Attempts) > 0 {
		msg += fmt.Sprintf("; %d converter(s) failed", len(e.Attempts))
	}
	return msg
}

// Is allows errors.Is() to match against ErrUnsupportedFormat
func (e *UnsupportedFormatError) Is(target error) bool {
	return target == ErrUnsupportedFormat
}

// ConverterError wraps a failure inside a single converter. It identifies the
// converter so callers inspecting UnsupportedFormatError.Attempts can tell
// which handler broke.
type ConverterError struct {
	Converter string
	Err       error
}

// Error implements the error interface
func (e *ConverterError) Error() string {
	return fmt.Sprintf("converter %s: %v", e.Converter, e.Err)
}

// Unwrap exposes the underlying failure for errors.Is/As chains
func (e *ConverterError) Unwrap() error {
	return e.Err
}

// Is allows errors.Is() to match against ErrConverterFailed
func (e *ConverterError) Is(target error) bool {
	return target == ErrConverterFailed
}

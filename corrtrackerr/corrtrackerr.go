/*
NAME
  corrtrackerr.go

DESCRIPTION
  corrtrackerr.go provides the unified failure taxonomy used across the
  corrtrack engine: decoders, the filter loader, the correlation
  engine, the sub-pixel refiner and the tracker all surface errors of
  the Kind enumerated here.

LICENSE
  Copyright (C) 2026 the corrtrack contributors. All Rights Reserved.
*/

// Package corrtrackerr defines the typed error kinds surfaced by the
// corrtrack engine and a small Error type that pairs a Kind with a
// human-readable message and an optional wrapped cause.
package corrtrackerr

import (
	"errors"
	"fmt"

	pkgerrors "github.com/pkg/errors"
)

// Kind identifies the machine-readable category of a corrtrack error.
type Kind int

const (
	// Io covers a missing file, an unreadable file, or a short read.
	Io Kind = iota

	// Unsupported covers a recognised format whose particular feature
	// is not handled (e.g. big-endian RAWM, compressed CINE, a
	// non-8/16-bit TIFF).
	Unsupported

	// Corrupt covers a magic mismatch, an inconsistent size, malformed
	// XML, or an out-of-range field.
	Corrupt

	// FilterFormat covers a rejected reference-pattern file.
	FilterFormat

	// WindowOutOfBounds covers correlation geometry that escapes the
	// image bounds.
	WindowOutOfBounds

	// FitUnderdetermined covers fewer than six points within the fit
	// radius.
	FitUnderdetermined

	// FitDegenerate covers a zero denominator in the peak solution.
	FitDegenerate

	// AnalyseError covers any of the above surfaced from the tracking
	// loop, with the output file flushed to whatever was written.
	AnalyseError
)

// String returns the human-readable name of k.
func (k Kind) String() string {
	switch k {
	case Io:
		return "Io"
	case Unsupported:
		return "Unsupported"
	case Corrupt:
		return "Corrupt"
	case FilterFormat:
		return "FilterFormat"
	case WindowOutOfBounds:
		return "WindowOutOfBounds"
	case FitUnderdetermined:
		return "FitUnderdetermined"
	case FitDegenerate:
		return "FitDegenerate"
	case AnalyseError:
		return "AnalyseError"
	default:
		return "Unknown"
	}
}

// Error is the error type returned by every corrtrack package. It
// carries a machine-readable Kind, a human-readable message, and
// (usually) the path or partial-output path relevant to the failure.
type Error struct {
	Kind Kind

	// Path is the file path associated with the error: the source
	// file for Io/Unsupported/Corrupt/FilterFormat, or the partial
	// output path for AnalyseError.
	Path string

	// Reason is the human-readable detail of the failure.
	Reason string

	// Cause is the wrapped underlying error, if any.
	Cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var msg string
	switch {
	case e.Path != "" && e.Cause != nil:
		msg = fmt.Sprintf("%s: %s: %s: %v", e.Kind, e.Path, e.Reason, e.Cause)
	case e.Path != "":
		msg = fmt.Sprintf("%s: %s: %s", e.Kind, e.Path, e.Reason)
	case e.Cause != nil:
		msg = fmt.Sprintf("%s: %s: %v", e.Kind, e.Reason, e.Cause)
	default:
		msg = fmt.Sprintf("%s: %s", e.Kind, e.Reason)
	}
	return msg
}

// Unwrap allows errors.Is and errors.As to see through to Cause.
func (e *Error) Unwrap() error { return e.Cause }

// New returns a new Error of the given kind with no path or cause.
func New(kind Kind, reason string) *Error {
	return &Error{Kind: kind, Reason: reason}
}

// Newf is like New but accepts a format string.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

// WithPath returns a new Error of the given kind, path and reason.
func WithPath(kind Kind, path, reason string) *Error {
	return &Error{Kind: kind, Path: path, Reason: reason}
}

// Wrap returns a new Error of the given kind, path and reason, with
// cause decorated with a stack trace via github.com/pkg/errors so
// that the original call site is not lost.
func Wrap(kind Kind, path, reason string, cause error) *Error {
	return &Error{Kind: kind, Path: path, Reason: reason, Cause: pkgerrors.WithStack(cause)}
}

// Is reports whether err is a corrtrack Error of the given Kind.
func Is(err error, kind Kind) bool {
	var ce *Error
	if !errors.As(err, &ce) {
		return false
	}
	return ce.Kind == kind
}

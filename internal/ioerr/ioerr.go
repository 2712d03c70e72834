// Package ioerr defines the error taxonomy shared by the collective
// communicator and the file context & section engine: a normalized error
// class plus the count-error class that has no equivalent at the OS or MPI
// layer.
package ioerr

import (
	"fmt"

	"golang.org/x/xerrors"
)

// Class is the public error class a pforest operation reports alongside its
// error. It never conflates a format problem with a backend failure, and
// the count-error class is always distinct from both.
type Class int

const (
	// ClassSuccess means no error occurred.
	ClassSuccess Class = iota
	// ClassBackend is a normalized I/O-backend error (OS or MPI-style).
	ClassBackend
	// ClassIO is a format error: bad magic, bad version line, malformed
	// ASCII header, unknown block type, missing padding sentinel, or a
	// data-size disagreement with the caller.
	ClassIO
	// ClassCount indicates a read or write returned fewer bytes than
	// requested with no lower-level error flag set.
	ClassCount
	// ClassArgument is a precondition breach surfaced before any file is
	// touched (nil pointer where forbidden, global-count mismatch, ...).
	ClassArgument
)

// String renders a Class the way p8est_file_error_string renders an
// errclass: a short, stable, human-readable label.
func (c Class) String() string {
	switch c {
	case ClassSuccess:
		return "success"
	case ClassBackend:
		return "I/O backend error"
	case ClassIO:
		return "file format error"
	case ClassCount:
		return "byte count mismatch"
	case ClassArgument:
		return "invalid argument"
	default:
		return fmt.Sprintf("unknown error class %d", int(c))
	}
}

// Error is the error type every pforest entry point returns. It always
// carries a Class so callers can branch on the taxonomy without string
// matching, and wraps the underlying cause when one exists.
type Error struct {
	Class Class
	Op    string
	cause error
}

func (e *Error) Error() string {
	if e.cause == nil {
		return fmt.Sprintf("pforest: %s: %s", e.Op, e.Class)
	}
	return fmt.Sprintf("pforest: %s: %s: %v", e.Op, e.Class, e.cause)
}

func (e *Error) Unwrap() error { return e.cause }

// New builds an *Error of the given class with no wrapped cause.
func New(op string, class Class) error {
	return &Error{Op: op, Class: class}
}

// Wrap builds an *Error of the given class wrapping cause. Returns nil if
// cause is nil, so callers can write `return ioerr.Wrap(op, class, err)`
// unconditionally after an operation that may or may not have failed.
func Wrap(op string, class Class, cause error) error {
	if cause == nil {
		return nil
	}
	return &Error{Op: op, Class: class, cause: xerrors.Errorf("%s: %w", op, cause)}
}

// ClassOf extracts the Class from err, or ClassBackend if err does not carry
// one (an error from a dependency that never learned about our taxonomy).
func ClassOf(err error) Class {
	if err == nil {
		return ClassSuccess
	}
	var e *Error
	if xerrors.As(err, &e) {
		return e.Class
	}
	return ClassBackend
}

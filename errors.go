package pforest

import "github.com/distr1/pforest/internal/ioerr"

// ErrClass is the normalized error class every pforest operation reports.
type ErrClass = ioerr.Class

// The error classes a pforest operation can report.
const (
	ErrClassSuccess  = ioerr.ClassSuccess
	ErrClassBackend  = ioerr.ClassBackend
	ErrClassIO       = ioerr.ClassIO
	ErrClassCount    = ioerr.ClassCount
	ErrClassArgument = ioerr.ClassArgument
)

// ClassOf extracts the ErrClass from an error returned by this package, or
// ErrClassBackend if err did not originate here.
func ClassOf(err error) ErrClass { return ioerr.ClassOf(err) }

// ErrorString renders an ErrClass as a short, stable label, mirroring
// p8est_file_error_string.
func ErrorString(class ErrClass) string { return class.String() }

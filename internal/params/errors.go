package params

import "errors"

// Sentinel errors for parameter operations.
var (
	// ErrFileUnreadable indicates the parameter file could not be
	// opened or read. This is fatal at startup.
	ErrFileUnreadable = errors.New("params: cannot read parameter file")

	// ErrUnknownParameter indicates a name with no registry entry.
	ErrUnknownParameter = errors.New("params: unknown parameter")

	// ErrInvalidKind indicates the registry entry's declared kind is
	// not one of float, int, bool, or enum.
	ErrInvalidKind = errors.New("params: invalid parameter kind")

	// ErrTypeMismatch indicates the supplied value cannot be coerced
	// to the parameter's declared kind.
	ErrTypeMismatch = errors.New("params: value type mismatch")
)

package asar

import "errors"

// Sentinel errors for archive building.
var (
	// ErrEmptyName is returned when a payload is added without a name.
	ErrEmptyName = errors.New("asar: empty payload name")

	// ErrNestedPath is returned when a payload name is not a single path element.
	ErrNestedPath = errors.New("asar: nested payload path")

	// ErrDuplicateName is returned when a payload name was already added.
	ErrDuplicateName = errors.New("asar: duplicate payload name")

	// ErrSizeOverflow is returned when the data region exceeds uint64.
	ErrSizeOverflow = errors.New("asar: size overflow")

	// ErrHeaderTooLarge is returned when the header JSON does not fit the uint32 size fields.
	ErrHeaderTooLarge = errors.New("asar: header too large")

	// ErrEncoding is returned when the header cannot be encoded.
	ErrEncoding = errors.New("asar: header encoding")

	// ErrMalformedHeader is returned when archive bytes do not start with a valid header.
	ErrMalformedHeader = errors.New("asar: malformed header")
)

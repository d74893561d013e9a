package asar

import (
	"errors"

	asarcore "github.com/meigma/asar/core"
	"github.com/meigma/asar/registry"
	"github.com/meigma/asar/sink"
	"github.com/meigma/asar/theme"
)

// Errors re-exported from core.
var (
	// ErrEmptyName is returned when a payload is added without a name.
	ErrEmptyName = asarcore.ErrEmptyName

	// ErrNestedPath is returned when a payload name is not a single path element.
	ErrNestedPath = asarcore.ErrNestedPath

	// ErrDuplicateName is returned when a payload name was already added.
	ErrDuplicateName = asarcore.ErrDuplicateName

	// ErrSizeOverflow is returned when the data region exceeds uint64.
	ErrSizeOverflow = asarcore.ErrSizeOverflow

	// ErrHeaderTooLarge is returned when the header does not fit the size fields.
	ErrHeaderTooLarge = asarcore.ErrHeaderTooLarge

	// ErrMalformedHeader is returned when bytes do not start with a valid header.
	ErrMalformedHeader = asarcore.ErrMalformedHeader
)

// Errors re-exported from theme.
var (
	// ErrNoMetadata is returned when a stylesheet has no metadata header.
	ErrNoMetadata = theme.ErrNoMetadata

	// ErrInvalidFileName is returned when no theme id can be derived from a file name.
	ErrInvalidFileName = theme.ErrInvalidFileName
)

// Errors re-exported from registry.
var (
	// ErrNotFound is returned when a repository does not exist.
	ErrNotFound = registry.ErrNotFound

	// ErrInvalidReference is returned when a reference string is malformed.
	ErrInvalidReference = registry.ErrInvalidReference

	// ErrUnauthorized is returned when the registry rejects the credentials.
	ErrUnauthorized = registry.ErrUnauthorized

	// ErrForbidden is returned when the credentials lack push access.
	ErrForbidden = registry.ErrForbidden
)

// ErrNameCollision is returned by ConvertDir when two stylesheets produce
// the same archive name.
var ErrNameCollision = errors.New("asar: archive name collision")

// ErrNoDestination is returned when a sink is configured without a target.
var ErrNoDestination = sink.ErrNoDestination

// MetadataParseError reports a stylesheet whose metadata header is missing
// or unreadable.
type MetadataParseError = theme.MetadataParseError

package theme

import (
	"errors"
	"fmt"
)

// Sentinel errors for theme conversion.
var (
	// ErrNoMetadata is returned when a stylesheet has no recognizable metadata header.
	ErrNoMetadata = errors.New("theme: no metadata header")

	// ErrInvalidFileName is returned when no theme id can be derived from the file name.
	ErrInvalidFileName = errors.New("theme: invalid file name")
)

// MetadataParseError reports a stylesheet whose metadata header could not be read.
// Conversion stops before any archive is built.
type MetadataParseError struct {
	FileName string
	Err      error
}

func (e *MetadataParseError) Error() string {
	return fmt.Sprintf("theme: parse metadata of %q: %v", e.FileName, e.Err)
}

func (e *MetadataParseError) Unwrap() error {
	return e.Err
}

package registry

import "errors"

// Sentinel errors for client operations.
var (
	// ErrNotFound is returned when a repository or manifest does not exist.
	ErrNotFound = errors.New("client: not found")

	// ErrInvalidReference is returned when a reference string is malformed
	// or does not carry a tag.
	ErrInvalidReference = errors.New("client: invalid reference")

	// ErrUnauthorized is returned when the registry rejects the credentials.
	ErrUnauthorized = errors.New("client: unauthorized")

	// ErrForbidden is returned when the credentials lack push access.
	ErrForbidden = errors.New("client: forbidden")

	// ErrEmptyArchive is returned when Push is given no archive bytes.
	ErrEmptyArchive = errors.New("client: empty archive")
)

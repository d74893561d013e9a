package registry

import (
	"fmt"
	"strings"

	"oras.land/oras-go/v2/registry"
)

// clientRef holds parsed reference information.
type clientRef struct {
	registry   string
	repository string
	reference  string // tag or digest
}

// parseClientRef parses a reference string into its components.
func parseClientRef(ref string) (clientRef, error) {
	r, err := registry.ParseReference(ref)
	if err != nil {
		return clientRef{}, fmt.Errorf("%w: %q", ErrInvalidReference, ref)
	}
	return clientRef{
		registry:   r.Registry,
		repository: r.Repository,
		reference:  r.Reference,
	}, nil
}

// isDigest reports whether ref is a digest rather than a tag.
// Tags cannot contain a colon.
func isDigest(ref string) bool {
	return strings.Contains(ref, ":")
}

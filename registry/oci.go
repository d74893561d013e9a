package registry

import (
	"context"
	"io"

	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

// OCIClient defines the registry operations Push needs.
//
// The default implementation is oras.Client; tests substitute a mock.
type OCIClient interface {
	// PushBlob pushes a blob to the repository.
	// The descriptor must contain the pre-computed digest and size.
	PushBlob(ctx context.Context, repoRef string, desc *ocispec.Descriptor, r io.Reader) error

	// PushManifest pushes a manifest to the repository with the given tag.
	PushManifest(ctx context.Context, repoRef, tag string, manifest *ocispec.Manifest) (ocispec.Descriptor, error)

	// Tag creates or updates a tag pointing to the given descriptor.
	Tag(ctx context.Context, repoRef string, desc *ocispec.Descriptor, tag string) error
}

package registry

import (
	"context"
	"errors"
	"io"

	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

var errNotImplemented = errors.New("not implemented in mock")

// mockOCIClient is a test mock for OCIClient. Methods are configured via
// function fields and return errNotImplemented by default.
type mockOCIClient struct {
	PushBlobFunc     func(ctx context.Context, repoRef string, desc *ocispec.Descriptor, r io.Reader) error
	PushManifestFunc func(ctx context.Context, repoRef, tag string, manifest *ocispec.Manifest) (ocispec.Descriptor, error)
	TagFunc          func(ctx context.Context, repoRef string, desc *ocispec.Descriptor, tag string) error
}

func (m *mockOCIClient) PushBlob(ctx context.Context, repoRef string, desc *ocispec.Descriptor, r io.Reader) error {
	if m.PushBlobFunc != nil {
		return m.PushBlobFunc(ctx, repoRef, desc, r)
	}
	return errNotImplemented
}

func (m *mockOCIClient) PushManifest(ctx context.Context, repoRef, tag string, manifest *ocispec.Manifest) (ocispec.Descriptor, error) {
	if m.PushManifestFunc != nil {
		return m.PushManifestFunc(ctx, repoRef, tag, manifest)
	}
	return ocispec.Descriptor{}, errNotImplemented
}

func (m *mockOCIClient) Tag(ctx context.Context, repoRef string, desc *ocispec.Descriptor, tag string) error {
	if m.TagFunc != nil {
		return m.TagFunc(ctx, repoRef, desc, tag)
	}
	return errNotImplemented
}

package asar

import (
	"context"
	"fmt"

	ocispec "github.com/opencontainers/image-spec/specs-go/v1"

	"github.com/meigma/asar/registry"
)

// PushOption configures a Push operation.
type PushOption = registry.PushOption

// PushWithTags applies additional tags to the pushed manifest.
func PushWithTags(tags ...string) PushOption {
	return registry.WithTags(tags...)
}

// PushWithAnnotations sets custom annotations on the manifest.
func PushWithAnnotations(annotations map[string]string) PushOption {
	return registry.WithAnnotations(annotations)
}

// Push publishes a converted theme to ref, which must include a tag
// (e.g., "ghcr.io/acme/themes/midnight:1.2.0").
//
// The manifest carries the theme's id, version, and name as annotations so
// registries can display them without pulling the archive. Push returns
// the descriptor of the pushed manifest.
func (c *Client) Push(ctx context.Context, ref string, res *Result, opts ...PushOption) (ocispec.Descriptor, error) {
	if res == nil {
		return ocispec.Descriptor{}, fmt.Errorf("push %s: nil result", ref)
	}
	opts = append([]PushOption{registry.WithAnnotations(manifestAnnotations(res.Manifest))}, opts...)
	return c.registry.Push(ctx, ref, res.Name, res.Data, opts...)
}

// PushFile converts the stylesheet at path and pushes the result to ref.
// The archive is also delivered to the client's sinks.
func (c *Client) PushFile(ctx context.Context, path, ref string, opts ...PushOption) (*Result, ocispec.Descriptor, error) {
	res, err := c.ConvertFile(ctx, path)
	if err != nil {
		return nil, ocispec.Descriptor{}, err
	}
	desc, err := c.Push(ctx, ref, res, opts...)
	if err != nil {
		return nil, ocispec.Descriptor{}, err
	}
	return res, desc, nil
}

// manifestAnnotations maps manifest fields onto OCI annotation keys.
func manifestAnnotations(m Manifest) map[string]string {
	a := map[string]string{
		"io.replugged.theme.id": m.ID,
	}
	if m.Name != nil {
		a[ocispec.AnnotationTitle] = *m.Name
	}
	if m.Version != nil {
		a[ocispec.AnnotationVersion] = *m.Version
	}
	if m.Description != nil {
		a[ocispec.AnnotationDescription] = *m.Description
	}
	if m.Author != nil {
		a[ocispec.AnnotationAuthors] = m.Author.Name
	}
	return a
}

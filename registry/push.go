package registry

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"time"

	"github.com/opencontainers/go-digest"
	"github.com/opencontainers/image-spec/specs-go"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

// Push pushes a theme archive to an OCI registry.
//
// The archive is pushed as one layer titled name, with a manifest of
// artifact type [ArtifactType]. The ref must include a tag
// (e.g., "ghcr.io/user/themes/midnight:1.2.0").
//
// Use WithTags to apply additional tags to the same manifest. Push returns
// the descriptor of the pushed manifest.
func (c *Client) Push(ctx context.Context, ref, name string, data []byte, opts ...PushOption) (ocispec.Descriptor, error) {
	cfg := pushConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	parsedRef, err := parseClientRef(ref)
	if err != nil {
		return ocispec.Descriptor{}, err
	}
	tag := parsedRef.reference
	if tag == "" || isDigest(tag) {
		return ocispec.Descriptor{}, fmt.Errorf("%w: reference must include a tag", ErrInvalidReference)
	}
	if len(data) == 0 {
		return ocispec.Descriptor{}, ErrEmptyArchive
	}

	// Step 1: Push empty config blob (required by OCI spec)
	configDesc, err := c.pushEmptyConfig(ctx, ref)
	if err != nil {
		return ocispec.Descriptor{}, fmt.Errorf("push config: %w", err)
	}

	// Step 2: Push the archive layer
	layerDesc := archiveDescriptor(name, data)
	if pushErr := c.oci.PushBlob(ctx, ref, &layerDesc, bytes.NewReader(data)); pushErr != nil {
		return ocispec.Descriptor{}, fmt.Errorf("push archive blob: %w", mapOCIError(pushErr))
	}
	c.log().Debug("pushed archive layer", "ref", ref, "digest", layerDesc.Digest, "size", layerDesc.Size)

	// Step 3: Build and push manifest
	manifest := buildManifest(&configDesc, &layerDesc, cfg.annotations)
	manifestDesc, err := c.oci.PushManifest(ctx, ref, tag, &manifest)
	if err != nil {
		return ocispec.Descriptor{}, fmt.Errorf("push manifest: %w", mapOCIError(err))
	}

	// Step 4: Apply additional tags
	for _, additionalTag := range cfg.tags {
		if tagErr := c.oci.Tag(ctx, ref, &manifestDesc, additionalTag); tagErr != nil {
			return ocispec.Descriptor{}, fmt.Errorf("tag %q: %w", additionalTag, mapOCIError(tagErr))
		}
	}

	c.log().Info("pushed theme", "ref", ref, "name", name, "digest", manifestDesc.Digest)
	return manifestDesc, nil
}

// pushEmptyConfig pushes the empty JSON config blob required by OCI manifests.
func (c *Client) pushEmptyConfig(ctx context.Context, ref string) (ocispec.Descriptor, error) {
	desc := ocispec.DescriptorEmptyJSON
	desc.Data = nil
	if err := c.oci.PushBlob(ctx, ref, &desc, bytes.NewReader(ocispec.DescriptorEmptyJSON.Data)); err != nil {
		return ocispec.Descriptor{}, mapOCIError(err)
	}
	return desc, nil
}

// archiveDescriptor describes the archive layer.
func archiveDescriptor(name string, data []byte) ocispec.Descriptor {
	desc := ocispec.Descriptor{
		MediaType: MediaTypeArchive,
		Digest:    digest.FromBytes(data),
		Size:      int64(len(data)),
	}
	if name != "" {
		desc.Annotations = map[string]string{ocispec.AnnotationTitle: name}
	}
	return desc
}

// buildManifest creates an OCI manifest for a theme archive.
func buildManifest(configDesc, layerDesc *ocispec.Descriptor, customAnnotations map[string]string) ocispec.Manifest {
	annotations := make(map[string]string, len(customAnnotations)+1)
	maps.Copy(annotations, customAnnotations)
	if _, ok := annotations[ocispec.AnnotationCreated]; !ok {
		annotations[ocispec.AnnotationCreated] = time.Now().UTC().Format(time.RFC3339)
	}

	return ocispec.Manifest{
		Versioned:    specs.Versioned{SchemaVersion: 2},
		MediaType:    ocispec.MediaTypeImageManifest,
		ArtifactType: ArtifactType,
		Config:       *configDesc,
		Layers:       []ocispec.Descriptor{*layerDesc},
		Annotations:  annotations,
	}
}

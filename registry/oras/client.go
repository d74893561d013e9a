package oras

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
	"oras.land/oras-go/v2/content"
	"oras.land/oras-go/v2/errdef"
	"oras.land/oras-go/v2/registry/remote"
	"oras.land/oras-go/v2/registry/remote/auth"
	"oras.land/oras-go/v2/registry/remote/credentials"
	"oras.land/oras-go/v2/registry/remote/errcode"
	"oras.land/oras-go/v2/registry/remote/retry"
)

// DefaultUserAgent is sent with every registry request unless
// WithUserAgent overrides it.
const DefaultUserAgent = "asar/1.0"

// Client uploads theme artifacts: the empty config blob, the archive
// layer, the manifest, and any extra tags.
//
// Every repository opened by a Client shares one auth.Client, so the token
// obtained for a theme's first blob also covers its manifest and tags.
type Client struct {
	plainHTTP bool
	userAgent string
	anonymous bool
	credStore credentials.Store
	logger    *slog.Logger

	http *auth.Client
}

// New returns a Client configured by opts.
func New(opts ...Option) *Client {
	c := &Client{userAgent: DefaultUserAgent}
	for _, opt := range opts {
		opt(c)
	}

	c.http = &auth.Client{
		Client:     retry.DefaultClient,
		Cache:      auth.NewCache(),
		Credential: c.credential,
	}
	c.http.SetUserAgent(c.userAgent)
	return c
}

func (c *Client) log() *slog.Logger {
	if c.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.logger
}

// credential looks up the login for hostport. Anonymous clients and
// clients without a store send no credentials.
func (c *Client) credential(ctx context.Context, hostport string) (auth.Credential, error) {
	if c.anonymous || c.credStore == nil {
		return auth.EmptyCredential, nil
	}
	return c.credStore.Get(ctx, hostport)
}

// open returns the repository named by ref. A tag or digest in ref is
// allowed and ignored.
func (c *Client) open(ref string) (*remote.Repository, error) {
	repo, err := remote.NewRepository(ref)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidReference, ref, err)
	}
	repo.Client = c.http
	repo.PlainHTTP = c.plainHTTP
	return repo, nil
}

// PushBlob uploads one blob of a theme artifact.
//
// desc must carry the digest and size of what r yields. A blob the
// registry already holds is not uploaded again, which keeps re-publishing
// an unchanged theme cheap.
func (c *Client) PushBlob(ctx context.Context, repoRef string, desc *ocispec.Descriptor, r io.Reader) error {
	if err := validateDescriptor(desc); err != nil {
		return err
	}
	if r == nil {
		return fmt.Errorf("%w: nil blob reader", ErrInvalidDescriptor)
	}
	repo, err := c.open(repoRef)
	if err != nil {
		return err
	}

	log := c.log().With("ref", repoRef, "digest", desc.Digest)
	if ok, err := repo.Exists(ctx, *desc); err == nil && ok {
		log.Debug("blob already present")
		return nil
	}

	err = repo.Push(ctx, *desc, r)
	switch {
	case err == nil:
		log.Debug("blob uploaded", "size", desc.Size)
		return nil
	case errors.Is(err, errdef.ErrAlreadyExists):
		return nil
	default:
		return mapError(err)
	}
}

// PushManifest uploads a theme manifest under tag and returns its
// descriptor.
func (c *Client) PushManifest(ctx context.Context, repoRef, tag string, manifest *ocispec.Manifest) (ocispec.Descriptor, error) {
	if manifest == nil {
		return ocispec.Descriptor{}, fmt.Errorf("%w: nil manifest", ErrManifestInvalid)
	}
	payload, err := json.Marshal(manifest)
	if err != nil {
		return ocispec.Descriptor{}, fmt.Errorf("%w: %v", ErrManifestInvalid, err)
	}
	repo, err := c.open(repoRef)
	if err != nil {
		return ocispec.Descriptor{}, err
	}

	desc := content.NewDescriptorFromBytes(ocispec.MediaTypeImageManifest, payload)
	desc.ArtifactType = manifest.ArtifactType
	if err := repo.PushReference(ctx, desc, bytes.NewReader(payload), tag); err != nil {
		return ocispec.Descriptor{}, mapError(err)
	}
	c.log().Debug("manifest pushed", "ref", repoRef, "tag", tag, "digest", desc.Digest)
	return desc, nil
}

// Tag points tag at an already pushed manifest.
func (c *Client) Tag(ctx context.Context, repoRef string, desc *ocispec.Descriptor, tag string) error {
	if err := validateDescriptor(desc); err != nil {
		return err
	}
	repo, err := c.open(repoRef)
	if err != nil {
		return err
	}
	return mapError(repo.Tag(ctx, *desc, tag))
}

func validateDescriptor(desc *ocispec.Descriptor) error {
	switch {
	case desc == nil:
		return fmt.Errorf("%w: nil", ErrInvalidDescriptor)
	case desc.Size < 0:
		return fmt.Errorf("%w: size %d", ErrInvalidDescriptor, desc.Size)
	}
	if err := desc.Digest.Validate(); err != nil {
		return fmt.Errorf("%w: digest %q: %v", ErrInvalidDescriptor, desc.Digest, err)
	}
	return nil
}

// statusErrors maps registry HTTP status codes onto sentinels.
var statusErrors = map[int]error{
	http.StatusNotFound:     ErrNotFound,
	http.StatusUnauthorized: ErrUnauthorized,
	http.StatusForbidden:    ErrForbidden,
}

// mapError wraps registry failures in this package's sentinels. Errors it
// does not recognize are returned unchanged.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	var resp *errcode.ErrorResponse
	if errors.As(err, &resp) {
		if sentinel, ok := statusErrors[resp.StatusCode]; ok {
			return fmt.Errorf("%w: %v", sentinel, err)
		}
	}
	if errors.Is(err, errdef.ErrNotFound) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return err
}

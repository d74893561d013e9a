package oras

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/opencontainers/go-digest"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"oras.land/oras-go/v2/errdef"
	"oras.land/oras-go/v2/registry/remote/auth"
)

func TestStaticCredentials(t *testing.T) {
	t.Parallel()

	store := StaticCredentials("https://ghcr.io/", "user", "pass")
	ctx := context.Background()

	cred, err := store.Get(ctx, "ghcr.io")
	require.NoError(t, err)
	assert.Equal(t, "user", cred.Username)
	assert.Equal(t, "pass", cred.Password)

	cred, err = store.Get(ctx, "other.example.com")
	require.NoError(t, err)
	assert.Equal(t, auth.EmptyCredential, cred)

	require.ErrorIs(t, store.Put(ctx, "ghcr.io", auth.Credential{}), errReadOnly)
	require.ErrorIs(t, store.Delete(ctx, "ghcr.io"), errReadOnly)
}

func TestStaticToken(t *testing.T) {
	t.Parallel()

	store := StaticToken("docker.io", "tok")

	cred, err := store.Get(context.Background(), "registry-1.docker.io:443")
	require.NoError(t, err)
	assert.Equal(t, "tok", cred.AccessToken)
	assert.Empty(t, cred.Username)
}

// mapStore is an in-memory credentials.Store.
type mapStore map[string]auth.Credential

func (m mapStore) Get(_ context.Context, addr string) (auth.Credential, error) {
	return m[addr], nil
}

func (m mapStore) Put(_ context.Context, addr string, cred auth.Credential) error {
	m[addr] = cred
	return nil
}

func (m mapStore) Delete(_ context.Context, addr string) error {
	delete(m, addr)
	return nil
}

func TestAliasStore(t *testing.T) {
	t.Parallel()

	inner := mapStore{"https://index.docker.io/v1/": {Username: "hub"}}
	store := &aliasStore{store: inner}
	ctx := context.Background()

	cred, err := store.Get(ctx, "registry-1.docker.io")
	require.NoError(t, err)
	assert.Equal(t, "hub", cred.Username)

	cred, err = store.Get(ctx, "ghcr.io")
	require.NoError(t, err)
	assert.True(t, isEmptyCredential(cred))
}

func TestNormalizeServerAddress(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"ghcr.io":                     "ghcr.io",
		"https://ghcr.io/v2/":         "ghcr.io",
		"http://localhost:5000/theme": "localhost:5000",
	}
	for in, want := range tests {
		assert.Equal(t, want, normalizeServerAddress(in), in)
	}
}

func TestIsDockerHubHost(t *testing.T) {
	t.Parallel()

	assert.True(t, isDockerHubHost("docker.io"))
	assert.True(t, isDockerHubHost("index.docker.io:443"))
	assert.False(t, isDockerHubHost("ghcr.io"))
	assert.False(t, isDockerHubHost("[::1]:5000"))
}

func TestValidateDescriptor(t *testing.T) {
	t.Parallel()

	valid := digest.FromString("theme")
	tests := []struct {
		name    string
		desc    *ocispec.Descriptor
		wantErr bool
	}{
		{"nil", nil, true},
		{"negative size", &ocispec.Descriptor{Digest: valid, Size: -1}, true},
		{"empty digest", &ocispec.Descriptor{Size: 1}, true},
		{"bad digest", &ocispec.Descriptor{Digest: "sha256:xyz", Size: 1}, true},
		{"valid", &ocispec.Descriptor{Digest: valid, Size: 5}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := validateDescriptor(tt.desc)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidDescriptor)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestMapError(t *testing.T) {
	t.Parallel()

	assert.NoError(t, mapError(nil))

	other := errors.New("boom")
	assert.Equal(t, other, mapError(other))

	err := mapError(fmt.Errorf("resolve: %w", errdef.ErrNotFound))
	require.ErrorIs(t, err, ErrNotFound)
}

package oras

import (
	"context"
	"errors"
	"slices"
	"strings"

	"oras.land/oras-go/v2/registry/remote/auth"
	"oras.land/oras-go/v2/registry/remote/credentials"
)

// errReadOnly is returned by Put and Delete on static stores.
var errReadOnly = errors.New("oci: static credential store is read-only")

// dockerHubHosts are the interchangeable names of Docker Hub, in the order
// credentials are looked up.
var dockerHubHosts = []string{
	"https://index.docker.io/v1/",
	"index.docker.io",
	"registry-1.docker.io",
	"docker.io",
}

// DefaultCredentialStore returns a credential store backed by the Docker
// config file and its credential helpers.
func DefaultCredentialStore() (credentials.Store, error) {
	store, err := credentials.NewStoreFromDocker(credentials.StoreOptions{})
	if err != nil {
		return nil, err
	}
	return &aliasStore{store: store}, nil
}

// StaticCredentials returns a credential store holding one username and
// password for registry.
func StaticCredentials(registry, username, password string) credentials.Store {
	return &staticStore{
		registry: normalizeServerAddress(registry),
		cred:     auth.Credential{Username: username, Password: password},
	}
}

// StaticToken returns a credential store holding one bearer token for
// registry.
func StaticToken(registry, token string) credentials.Store {
	return &staticStore{
		registry: normalizeServerAddress(registry),
		cred:     auth.Credential{AccessToken: token},
	}
}

type staticStore struct {
	registry string
	cred     auth.Credential
}

func (s *staticStore) Get(_ context.Context, serverAddress string) (auth.Credential, error) {
	if sameRegistry(normalizeServerAddress(serverAddress), s.registry) {
		return s.cred, nil
	}
	return auth.EmptyCredential, nil
}

func (s *staticStore) Put(context.Context, string, auth.Credential) error { return errReadOnly }

func (s *staticStore) Delete(context.Context, string) error { return errReadOnly }

// aliasStore retries a lookup under the other Docker Hub host names when the
// first lookup yields nothing.
type aliasStore struct {
	store credentials.Store
}

func (s *aliasStore) Get(ctx context.Context, serverAddress string) (auth.Credential, error) {
	cred, err := s.store.Get(ctx, serverAddress)
	if err == nil && !isEmptyCredential(cred) {
		return cred, nil
	}
	if !isDockerHubHost(normalizeServerAddress(serverAddress)) {
		return cred, err
	}
	for _, alt := range dockerHubHosts {
		if alt == serverAddress {
			continue
		}
		if c, altErr := s.store.Get(ctx, alt); altErr == nil && !isEmptyCredential(c) {
			return c, nil
		}
	}
	return cred, err
}

func (s *aliasStore) Put(ctx context.Context, serverAddress string, cred auth.Credential) error {
	return s.store.Put(ctx, serverAddress, cred)
}

func (s *aliasStore) Delete(ctx context.Context, serverAddress string) error {
	return s.store.Delete(ctx, serverAddress)
}

// sameRegistry reports whether two normalized addresses name the same
// registry. All Docker Hub names are treated as one.
func sameRegistry(a, b string) bool {
	if a == b {
		return true
	}
	return isDockerHubHost(a) && isDockerHubHost(b)
}

func isDockerHubHost(hostport string) bool {
	host := hostport
	if !strings.HasPrefix(host, "[") {
		if i := strings.LastIndex(host, ":"); i != -1 {
			host = host[:i]
		}
	}
	return slices.Contains(dockerHubHosts[1:], host)
}

// normalizeServerAddress strips scheme and path from a server address,
// keeping host and port.
func normalizeServerAddress(addr string) string {
	addr = strings.TrimPrefix(addr, "http://")
	addr = strings.TrimPrefix(addr, "https://")
	addr, _, _ = strings.Cut(addr, "/")
	return addr
}

func isEmptyCredential(cred auth.Credential) bool {
	return cred.Username == "" && cred.Password == "" && cred.AccessToken == "" && cred.RefreshToken == ""
}

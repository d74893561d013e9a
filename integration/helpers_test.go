//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/docker/go-connections/nat"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"oras.land/oras-go/v2"
	"oras.land/oras-go/v2/content"
	"oras.land/oras-go/v2/registry/remote"

	"github.com/meigma/asar"
)

// --- Container Setup ---

var (
	registryOnce sync.Once
	registryAddr string
	registryErr  error

	minioOnce     sync.Once
	minioEndpoint string
	minioErr      error
)

const (
	minioUser     = "asar-test"
	minioPassword = "asar-test-secret"
)

func skipWithoutDocker(tb testing.TB) {
	tb.Helper()
	if os.Getenv("SKIP_DOCKER_TESTS") == "1" {
		tb.Skip("SKIP_DOCKER_TESTS is set")
	}
}

// getRegistry returns the shared registry address, starting the container if needed.
// The container is shared across all tests for performance.
func getRegistry(tb testing.TB) string {
	tb.Helper()
	skipWithoutDocker(tb)

	registryOnce.Do(func() {
		registryAddr, registryErr = startRegistryContainer(context.Background())
	})
	if registryErr != nil {
		tb.Fatalf("start registry container: %v", registryErr)
	}
	return registryAddr
}

// startRegistryContainer starts a registry:2 container and returns the host:port address.
func startRegistryContainer(ctx context.Context) (string, error) {
	req := testcontainers.ContainerRequest{
		Image:        "registry:2",
		ExposedPorts: []string{"5000/tcp"},
		WaitingFor:   wait.ForHTTP("/v2/").WithPort("5000/tcp").WithStatusCodeMatcher(isOKStatus),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return "", fmt.Errorf("start registry container: %w", err)
	}
	return hostPort(ctx, container, "5000/tcp")
}

// getMinio returns the shared MinIO endpoint URL, starting the container if needed.
func getMinio(tb testing.TB) string {
	tb.Helper()
	skipWithoutDocker(tb)

	minioOnce.Do(func() {
		minioEndpoint, minioErr = startMinioContainer(context.Background())
	})
	if minioErr != nil {
		tb.Fatalf("start minio container: %v", minioErr)
	}
	return minioEndpoint
}

func startMinioContainer(ctx context.Context) (string, error) {
	req := testcontainers.ContainerRequest{
		Image:        "minio/minio:latest",
		Cmd:          []string{"server", "/data"},
		ExposedPorts: []string{"9000/tcp"},
		Env: map[string]string{
			"MINIO_ROOT_USER":     minioUser,
			"MINIO_ROOT_PASSWORD": minioPassword,
		},
		WaitingFor: wait.ForHTTP("/minio/health/live").WithPort("9000/tcp").WithStatusCodeMatcher(isOKStatus),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return "", fmt.Errorf("start minio container: %w", err)
	}
	addr, err := hostPort(ctx, container, "9000/tcp")
	if err != nil {
		return "", err
	}
	return "http://" + addr, nil
}

func hostPort(ctx context.Context, container testcontainers.Container, port string) (string, error) {
	host, err := container.Host(ctx)
	if err != nil {
		return "", fmt.Errorf("resolve container host: %w", err)
	}
	mapped, err := container.MappedPort(ctx, nat.Port(port))
	if err != nil {
		return "", fmt.Errorf("resolve container port: %w", err)
	}
	return fmt.Sprintf("%s:%s", host, mapped.Port()), nil
}

func isOKStatus(status int) bool {
	return status >= 200 && status < 300
}

// --- Test Client Factory ---

// newTestClient creates a client configured for the local test registry.
func newTestClient(tb testing.TB, opts ...asar.Option) *asar.Client {
	tb.Helper()

	allOpts := append([]asar.Option{asar.WithPlainHTTP(true), asar.WithAnonymous()}, opts...)
	client, err := asar.NewClient(allOpts...)
	require.NoError(tb, err, "create test client")
	return client
}

// testNamespace returns a repository namespace unique to the test.
func testNamespace(registryAddr string, tb testing.TB) string {
	name := strings.ToLower(strings.NewReplacer("/", "-", "_", "-").Replace(tb.Name()))
	return fmt.Sprintf("%s/test/%s", registryAddr, name)
}

// --- Registry Helpers ---

// pulled is a theme artifact read back from the registry.
type pulled struct {
	Descriptor ocispec.Descriptor
	Manifest   ocispec.Manifest
	Archive    []byte
}

// pullTheme resolves ref and fetches its manifest and archive layer.
func pullTheme(tb testing.TB, ref string) pulled {
	tb.Helper()
	ctx := context.Background()

	repo, err := remote.NewRepository(ref)
	require.NoError(tb, err)
	repo.PlainHTTP = true

	desc, manifestJSON, err := oras.FetchBytes(ctx, repo, repo.Reference.Reference, oras.DefaultFetchBytesOptions)
	require.NoError(tb, err, "fetch manifest %s", ref)

	var manifest ocispec.Manifest
	require.NoError(tb, json.Unmarshal(manifestJSON, &manifest))
	require.Len(tb, manifest.Layers, 1, "layer count")

	archive, err := content.FetchAll(ctx, repo, manifest.Layers[0])
	require.NoError(tb, err, "fetch archive layer")

	return pulled{Descriptor: desc, Manifest: manifest, Archive: archive}
}

// --- Test Data Helpers ---

// writeTheme writes a stylesheet into dir and returns its path.
func writeTheme(tb testing.TB, dir, fileName, css string) string {
	tb.Helper()
	path := filepath.Join(dir, fileName)
	require.NoError(tb, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(tb, os.WriteFile(path, []byte(css), 0o644))
	return path
}

const midnightCSS = `/**
 * @name Midnight
 * @author Alice
 * @authorId 123
 * @version 1.2.0
 * @description A dark theme
 */
body { background: #000; }
`

const legacyCSS = `//META{"name":"Old","author":"Bob","version":"0.1"}*//
body { color: #fff; }
`

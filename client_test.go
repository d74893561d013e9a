package asar

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/opencontainers/go-digest"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/asar/core/testutil"
	"github.com/meigma/asar/sink"
)

const midnightCSS = `/**
 * @name Midnight
 * @author Alice
 * @authorId 123
 * @version 1.2.0
 * @description A dark theme
 */
body { background: #000; }
`

func themeCSS(name string) string {
	return "/**\n * @name " + name + "\n */\nbody{}\n"
}

func newMemoryClient(t *testing.T, opts ...Option) (*Client, *sink.Memory) {
	t.Helper()
	mem := &sink.Memory{}
	c, err := NewClient(append([]Option{WithSinks(mem)}, opts...)...)
	require.NoError(t, err)
	return c, mem
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestClient_Convert(t *testing.T) {
	t.Parallel()

	c, mem := newMemoryClient(t)

	res, err := c.Convert(context.Background(), midnightCSS, "Midnight.theme.css")
	require.NoError(t, err)
	assert.Equal(t, "bd.theme.Midnight.asar", res.Name)
	assert.Equal(t, "bd.theme.Midnight", res.Manifest.ID)
	assert.Equal(t, digest.FromBytes(res.Data), res.Digest)

	delivered, ok := mem.Get("bd.theme.Midnight.asar")
	require.True(t, ok)
	assert.Equal(t, res.Data, delivered)

	archive := testutil.MustParse(t, delivered)
	assert.Equal(t, []string{"manifest.json", "Midnight.theme.css"}, archive.Names())
}

func TestClient_Convert_NoMetadataDeliversNothing(t *testing.T) {
	t.Parallel()

	c, mem := newMemoryClient(t)

	res, err := c.Convert(context.Background(), "body { color: red; }", "plain.theme.css")
	require.ErrorIs(t, err, ErrNoMetadata)
	var parseErr *MetadataParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Nil(t, res)
	assert.Zero(t, mem.Len())
}

func TestClient_Convert_CanceledContext(t *testing.T) {
	t.Parallel()

	c, mem := newMemoryClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Convert(ctx, midnightCSS, "Midnight.theme.css")
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, mem.Len())
}

func TestClient_Convert_NoSinks(t *testing.T) {
	t.Parallel()

	c, err := NewClient()
	require.NoError(t, err)

	res, err := c.Convert(context.Background(), midnightCSS, "Midnight.theme.css")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Data)
}

func TestClient_Deliver_AllSinks(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	boom := errors.New("bucket unavailable")
	var (
		mu    sync.Mutex
		calls int
	)
	failing := SinkFunc(func(context.Context, []byte, string) error {
		mu.Lock()
		calls++
		mu.Unlock()
		return boom
	})
	mem := &sink.Memory{}

	c, err := NewClient(WithOutputDir(dir), WithSinks(failing, mem))
	require.NoError(t, err)
	require.Len(t, c.Sinks(), 3)

	_, err = c.Convert(context.Background(), midnightCSS, "Midnight.theme.css")
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "bd.theme.Midnight.asar")

	// Sibling sinks still received the archive.
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, mem.Len())
	_, statErr := os.Stat(filepath.Join(dir, "bd.theme.Midnight.asar"))
	assert.NoError(t, statErr)
}

func TestClient_ConvertFile(t *testing.T) {
	t.Parallel()

	out := t.TempDir()
	src := filepath.Join(t.TempDir(), "Midnight.theme.css")
	writeFile(t, src, midnightCSS)

	c, err := NewClient(WithOutputDir(out))
	require.NoError(t, err)

	res, err := c.ConvertFile(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, src, res.Source)

	data, err := os.ReadFile(filepath.Join(out, res.Name))
	require.NoError(t, err)
	assert.Equal(t, res.Data, data)

	css, err := testutil.MustParse(t, data).ReadFile("Midnight.theme.css")
	require.NoError(t, err)
	assert.Equal(t, midnightCSS, string(css))
}

func TestClient_ConvertFile_Missing(t *testing.T) {
	t.Parallel()

	c, err := NewClient()
	require.NoError(t, err)

	_, err = c.ConvertFile(context.Background(), filepath.Join(t.TempDir(), "nope.theme.css"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestClient_ConvertDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "B.theme.css"), themeCSS("B"))
	writeFile(t, filepath.Join(dir, "A.theme.css"), themeCSS("A"))
	writeFile(t, filepath.Join(dir, "nested", "C.theme.css"), themeCSS("C"))
	writeFile(t, filepath.Join(dir, "drafts", "D.theme.css"), themeCSS("D"))
	writeFile(t, filepath.Join(dir, "Old.theme.css"), themeCSS("Old"))
	writeFile(t, filepath.Join(dir, "notes.css"), "body{}")
	writeFile(t, filepath.Join(dir, "node_modules", "E.theme.css"), themeCSS("E"))
	writeFile(t, filepath.Join(dir, IgnoreFile), "drafts/\nOld.theme.css\n")

	c, mem := newMemoryClient(t, WithConcurrency(2))

	results, err := c.ConvertDir(context.Background(), dir)
	require.NoError(t, err)

	var names []string
	for _, r := range results {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{
		"bd.theme.A.asar",
		"bd.theme.B.asar",
		"bd.theme.C.asar",
	}, names)
	assert.ElementsMatch(t, names, mem.Names())
}

func TestClient_ConvertDir_FailsFast(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Good.theme.css"), themeCSS("Good"))
	writeFile(t, filepath.Join(dir, "Bad.theme.css"), "body{}")

	c, err := NewClient(WithConcurrency(1))
	require.NoError(t, err)

	results, err := c.ConvertDir(context.Background(), dir)
	require.ErrorIs(t, err, ErrNoMetadata)
	assert.Contains(t, err.Error(), "Bad.theme.css")
	assert.Nil(t, results)
}

func TestClient_ConvertDir_NameCollision(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	first := filepath.Join(dir, "a", "X.theme.css")
	second := filepath.Join(dir, "b", "X.theme.css")
	writeFile(t, first, themeCSS("First"))
	writeFile(t, second, themeCSS("Second"))
	writeFile(t, filepath.Join(dir, "Other.theme.css"), themeCSS("Other"))

	c, mem := newMemoryClient(t)

	results, err := c.ConvertDir(context.Background(), dir)
	require.ErrorIs(t, err, ErrNameCollision)
	assert.Contains(t, err.Error(), first)
	assert.Contains(t, err.Error(), second)
	assert.Contains(t, err.Error(), "bd.theme.X.asar")
	assert.Nil(t, results)
	assert.Zero(t, mem.Len(), "nothing is delivered when names collide")
}

func TestClient_ConvertDir_FailureDeliversNothing(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Good.theme.css"), themeCSS("Good"))
	writeFile(t, filepath.Join(dir, "Bad.theme.css"), "body{}")

	c, mem := newMemoryClient(t)

	_, err := c.ConvertDir(context.Background(), dir)
	require.ErrorIs(t, err, ErrNoMetadata)
	assert.Zero(t, mem.Len())
}

func TestClient_ConvertDir_Empty(t *testing.T) {
	t.Parallel()

	c, err := NewClient()
	require.NoError(t, err)

	results, err := c.ConvertDir(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestClient_ConvertDir_MissingDir(t *testing.T) {
	t.Parallel()

	c, err := NewClient()
	require.NoError(t, err)

	_, err = c.ConvertDir(context.Background(), filepath.Join(t.TempDir(), "missing"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestNewClient_InvalidOptions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		opts    []Option
		wantErr error
	}{
		{"zero concurrency", []Option{WithConcurrency(0)}, nil},
		{"nil sink", []Option{WithSinks(nil)}, nil},
		{"empty output dir", []Option{WithOutputDir("")}, ErrNoDestination},
		{"empty registry namespace", []Option{WithRegistry("", "")}, ErrNoDestination},
		{"registry twice", []Option{WithRegistry("ghcr.io/a", ""), WithRegistry("ghcr.io/b", "")}, nil},
		{"nil oci client", []Option{WithOCIClient(nil)}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c, err := NewClient(tt.opts...)
			require.Error(t, err)
			assert.Nil(t, c)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

// recordingOCI is a registry.OCIClient that records pushes in memory.
type recordingOCI struct {
	mu        sync.Mutex
	blobs     map[digest.Digest][]byte
	manifests map[string]*ocispec.Manifest
	err       error
}

func newRecordingOCI() *recordingOCI {
	return &recordingOCI{
		blobs:     make(map[digest.Digest][]byte),
		manifests: make(map[string]*ocispec.Manifest),
	}
}

func (r *recordingOCI) PushBlob(_ context.Context, _ string, desc *ocispec.Descriptor, rd io.Reader) error {
	if r.err != nil {
		return r.err
	}
	data, err := io.ReadAll(rd)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.blobs[desc.Digest] = data
	return nil
}

func (r *recordingOCI) PushManifest(_ context.Context, repoRef, _ string, m *ocispec.Manifest) (ocispec.Descriptor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.manifests[repoRef] = m
	return ocispec.Descriptor{MediaType: ocispec.MediaTypeImageManifest, Digest: digest.FromString(repoRef), Size: 1}, nil
}

func (r *recordingOCI) Tag(context.Context, string, *ocispec.Descriptor, string) error {
	return nil
}

func TestClient_Push(t *testing.T) {
	t.Parallel()

	oci := newRecordingOCI()
	c, err := NewClient(WithOCIClient(oci))
	require.NoError(t, err)

	res, err := c.Convert(context.Background(), midnightCSS, "Midnight.theme.css")
	require.NoError(t, err)

	const ref = "localhost:5000/themes/midnight:1.2.0"
	desc, err := c.Push(context.Background(), ref, res,
		PushWithAnnotations(map[string]string{"org.example.channel": "stable"}))
	require.NoError(t, err)
	assert.Equal(t, digest.FromString(ref), desc.Digest)

	m := oci.manifests[ref]
	require.NotNil(t, m)
	require.Len(t, m.Layers, 1)
	assert.Equal(t, res.Digest, m.Layers[0].Digest)
	assert.Equal(t, res.Data, oci.blobs[res.Digest])
	assert.Equal(t, "bd.theme.Midnight", m.Annotations["io.replugged.theme.id"])
	assert.Equal(t, "Midnight", m.Annotations[ocispec.AnnotationTitle])
	assert.Equal(t, "1.2.0", m.Annotations[ocispec.AnnotationVersion])
	assert.Equal(t, "Alice", m.Annotations[ocispec.AnnotationAuthors])
	assert.Equal(t, "stable", m.Annotations["org.example.channel"])
}

func TestClient_Push_Errors(t *testing.T) {
	t.Parallel()

	c, err := NewClient(WithOCIClient(newRecordingOCI()))
	require.NoError(t, err)

	_, err = c.Push(context.Background(), "localhost:5000/themes/x:1", nil)
	require.Error(t, err)

	res, err := c.Convert(context.Background(), midnightCSS, "Midnight.theme.css")
	require.NoError(t, err)
	_, err = c.Push(context.Background(), "localhost:5000/themes/x", res)
	require.ErrorIs(t, err, ErrInvalidReference)
}

func TestClient_RegistrySink(t *testing.T) {
	t.Parallel()

	oci := newRecordingOCI()
	c, err := NewClient(WithOCIClient(oci), WithRegistry("localhost:5000/themes", "v1"))
	require.NoError(t, err)

	_, err = c.Convert(context.Background(), midnightCSS, "Midnight.theme.css")
	require.NoError(t, err)

	assert.Contains(t, oci.manifests, "localhost:5000/themes/bd.theme.midnight:v1")
}

func TestClient_PushFile(t *testing.T) {
	t.Parallel()

	src := filepath.Join(t.TempDir(), "Midnight.theme.css")
	writeFile(t, src, midnightCSS)

	oci := newRecordingOCI()
	c, err := NewClient(WithOCIClient(oci))
	require.NoError(t, err)

	res, desc, err := c.PushFile(context.Background(), src, "localhost:5000/themes/midnight:latest")
	require.NoError(t, err)
	assert.Equal(t, "bd.theme.Midnight.asar", res.Name)
	assert.NotEmpty(t, desc.Digest)

	oci.err = errors.New("registry down")
	_, _, err = c.PushFile(context.Background(), src, "localhost:5000/themes/midnight:latest")
	require.Error(t, err)
}

func TestClient_ConvertURL(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "token", r.Header.Get("X-Theme-Token"))
		_, _ = io.WriteString(w, midnightCSS)
	}))
	t.Cleanup(srv.Close)

	c, mem := newMemoryClient(t, WithHTTPClient(srv.Client()), WithFetchHeader("X-Theme-Token", "token"))

	res, err := c.ConvertURL(context.Background(), srv.URL+"/Midnight.theme.css")
	require.NoError(t, err)
	assert.Equal(t, "bd.theme.Midnight.asar", res.Name)
	assert.Equal(t, srv.URL+"/Midnight.theme.css", res.Source)
	assert.Equal(t, 1, mem.Len())

	_, err = c.ConvertURL(context.Background(), srv.URL+"/")
	require.ErrorIs(t, err, ErrInvalidFileName)
}

package theme

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	asar "github.com/meigma/asar/core"
	"github.com/meigma/asar/core/testutil"
)

func TestConvert(t *testing.T) {
	t.Parallel()

	a, err := Convert(modernCSS, "Midnight.theme.css")
	require.NoError(t, err)
	assert.Equal(t, "bd.theme.Midnight.asar", a.Name)

	archive := testutil.MustParse(t, a.Data)
	assert.Equal(t, []string{ManifestName, "Midnight.theme.css"}, archive.Names())

	css, err := archive.ReadFile("Midnight.theme.css")
	require.NoError(t, err)
	assert.Equal(t, modernCSS, string(css))

	raw, err := archive.ReadFile(ManifestName)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	assert.Equal(t, "bd.theme.Midnight", m["id"])
	assert.Equal(t, "Midnight.theme.css", m["main"])

	manifestFile, ok := archive.File(ManifestName)
	require.True(t, ok)
	cssFile, ok := archive.File("Midnight.theme.css")
	require.True(t, ok)
	assert.Equal(t, uint64(0), manifestFile.Offset)
	assert.Equal(t, manifestFile.Size, cssFile.Offset)
}

func TestConvert_Legacy(t *testing.T) {
	t.Parallel()

	css := `//META{"name":"Old","author":"Bob"}*//` + "\nbody{}"
	a, err := Convert(css, "Old.theme.css")
	require.NoError(t, err)
	assert.Equal(t, "bd.theme.Old.asar", a.Name)
	require.NotNil(t, a.Manifest.Author)
	assert.Equal(t, "Bob", a.Manifest.Author.Name)
}

func TestConvert_NoMetadata(t *testing.T) {
	t.Parallel()

	a, err := Convert("body{}", "x.theme.css")
	require.ErrorIs(t, err, ErrNoMetadata)
	assert.Nil(t, a)
}

func TestConvert_ReservedFileName(t *testing.T) {
	t.Parallel()

	_, err := Convert(modernCSS, ManifestName)
	require.ErrorIs(t, err, asar.ErrDuplicateName)

	_, err = Convert(modernCSS, "dir/a.theme.css")
	require.ErrorIs(t, err, asar.ErrNestedPath)
}

func TestConvert_CRLineEndings(t *testing.T) {
	t.Parallel()

	a, err := Convert("/**\r * @name Mac\r * @author Old\r */\rx{}", "Mac.theme.css")
	require.NoError(t, err)

	raw, err := testutil.MustParse(t, a.Data).ReadFile(ManifestName)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"name":"Mac","author":{"name":"Old"}`)
}

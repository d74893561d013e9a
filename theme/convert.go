package theme

import (
	"fmt"

	asar "github.com/meigma/asar/core"
)

// Archive is a converted theme ready for delivery.
type Archive struct {
	// Name is the archive file name, "<id>.asar".
	Name string
	// Data is the complete archive.
	Data     []byte
	Manifest Manifest
}

// Convert packages a stylesheet into a theme archive.
//
// The archive holds manifest.json followed by the stylesheet stored under
// fileName. fileName must be a bare file name. If the metadata header
// cannot be read, Convert returns a *MetadataParseError and no archive is
// built.
func Convert(css, fileName string, opts ...asar.BuilderOption) (*Archive, error) {
	md, err := Extract(css, fileName)
	if err != nil {
		return nil, err
	}
	manifest, err := BuildManifest(md, fileName)
	if err != nil {
		return nil, err
	}
	manifestJSON, err := manifest.JSON()
	if err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}

	b := asar.NewBuilder(opts...)
	if err := b.Add(ManifestName, manifestJSON); err != nil {
		return nil, fmt.Errorf("add manifest: %w", err)
	}
	if err := b.Add(fileName, []byte(css)); err != nil {
		return nil, fmt.Errorf("add stylesheet: %w", err)
	}
	data, err := b.Finalize()
	if err != nil {
		return nil, err
	}

	return &Archive{
		Name:     manifest.ArchiveName(),
		Data:     data,
		Manifest: manifest,
	}, nil
}

package theme

import (
	"bytes"
	"path"
	"strings"
)

// Manifest constants for converted themes.
const (
	// ManifestName is the archive entry holding the theme manifest.
	ManifestName = "manifest.json"

	// ArchiveExt is appended to the theme id to name the archive.
	ArchiveExt = ".asar"

	// IDPrefix namespaces converted themes.
	IDPrefix = "bd.theme."

	// ManifestType is the Replugged addon type for themes.
	ManifestType = "replugged-theme"

	// DefaultLicense is recorded because source headers carry no license field.
	DefaultLicense = "Unknown"
)

// Author identifies the theme author.
type Author struct {
	Name      string `json:"name"`
	DiscordID string `json:"discordID,omitempty"`
}

// Manifest is a Replugged theme manifest.
//
// Optional string fields are pointers so a header field that is present
// but empty is still emitted.
type Manifest struct {
	ID          string   `json:"id"`
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Version     *string  `json:"version,omitempty"`
	Author      *Author  `json:"author,omitempty"`
	Type        string   `json:"type"`
	Main        string   `json:"main"`
	License     string   `json:"license"`
	BDMeta      Metadata `json:"bdMeta"`
}

// ArchiveName returns the file name for the theme archive.
func (m *Manifest) ArchiveName() string {
	return m.ID + ArchiveExt
}

// JSON encodes the manifest without HTML escaping.
func (m *Manifest) JSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeJSON(&buf, m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildManifest builds the Replugged manifest for a stylesheet named
// fileName with metadata md.
func BuildManifest(md Metadata, fileName string) (Manifest, error) {
	id, err := DeriveID(fileName)
	if err != nil {
		return Manifest{}, err
	}

	m := Manifest{
		ID:      id,
		Type:    ManifestType,
		Main:    fileName,
		License: DefaultLicense,
		BDMeta:  md,
	}
	m.Name = optional(md, "name")
	m.Description = optional(md, "description")
	m.Version = optional(md, "version")
	if name, ok := md.Get("author"); ok {
		m.Author = &Author{Name: name}
		if discordID, ok := md.Get("authorId"); ok {
			m.Author.DiscordID = discordID
		}
	}
	return m, nil
}

// DeriveID returns the theme id for a stylesheet file name.
//
// The last two dot-separated parts are dropped, so "Midnight.theme.css"
// becomes "bd.theme.Midnight". Names with fewer parts fall back to
// dropping only the extension.
func DeriveID(fileName string) (string, error) {
	parts := strings.Split(fileName, ".")
	var stem string
	if len(parts) > 2 {
		stem = strings.Join(parts[:len(parts)-2], ".")
	}
	if stem == "" {
		stem = strings.TrimSuffix(fileName, path.Ext(fileName))
	}
	if stem == "" {
		return "", ErrInvalidFileName
	}
	return IDPrefix + stem, nil
}

func optional(md Metadata, key string) *string {
	v, ok := md.Get(key)
	if !ok {
		return nil
	}
	return &v
}

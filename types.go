package asar

import (
	"github.com/opencontainers/go-digest"

	"github.com/meigma/asar/sink"
	"github.com/meigma/asar/theme"
)

// Sink receives finished archives.
type Sink = sink.Sink

// SinkFunc adapts a function to the Sink interface.
type SinkFunc = sink.Func

// Manifest is the Replugged manifest stored in every archive.
type Manifest = theme.Manifest

// Metadata is the ordered metadata read from a stylesheet header.
type Metadata = theme.Metadata

// Result is a converted theme.
type Result struct {
	// Name is the archive file name, "<id>.asar".
	Name string

	// Data is the complete archive.
	Data []byte

	// Manifest is the manifest stored in the archive.
	Manifest Manifest

	// Digest is the sha256 digest of Data.
	Digest digest.Digest

	// Source is the path the stylesheet was read from, if any.
	Source string
}

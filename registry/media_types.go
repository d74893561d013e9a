package registry

// Media types for theme archives in OCI registries.
const (
	// ArtifactType identifies theme archives as an OCI 1.1 artifact type.
	ArtifactType = "application/vnd.meigma.asar.theme.v1"

	// MediaTypeArchive is the media type of the archive layer.
	MediaTypeArchive = "application/vnd.electron.asar"
)

// Package registry pushes theme archives to OCI registries.
//
// A theme is stored as a single-layer OCI artifact. The manifest carries
// the artifact type [ArtifactType], an empty JSON config, and one layer of
// media type [MediaTypeArchive] holding the archive bytes unchanged. The
// layer's org.opencontainers.image.title annotation is the archive file
// name, so tools such as oras pull restore it under that name.
//
// Use [New] with [WithOCIClient] to substitute the transport in tests.
package registry

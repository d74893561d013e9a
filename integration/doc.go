//go:build integration

// Package integration provides integration tests for the asar library.
//
// These tests require Docker. They run a real OCI registry and a MinIO
// server using testcontainers.
// Run with: go test -tags=integration ./integration/...
package integration

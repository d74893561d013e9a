// Package oras provides the OCI registry client used to push theme
// archives, wrapping the ORAS library.
//
// Client handles authentication (docker config, static credentials, or
// anonymous) and maps ORAS errors to the sentinel errors of this package.
package oras

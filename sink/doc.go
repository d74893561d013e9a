// Package sink delivers finished theme archives.
//
// A [Sink] receives the complete archive bytes and the archive file name.
// Implementations write to a local directory ([Dir]), an S3 bucket ([S3]),
// an OCI registry ([Registry]), or memory ([Memory]); [Func] adapts a
// plain function. A Sink returns an error when delivery fails and never
// stores a partial archive.
package sink

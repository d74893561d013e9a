package sink

import (
	"context"
	"fmt"
	"strings"

	ocispec "github.com/opencontainers/image-spec/specs-go/v1"

	"github.com/meigma/asar/registry"
)

// DefaultTag is the tag Registry pushes when none is configured.
const DefaultTag = "latest"

// Pusher pushes one archive to a tagged reference.
// [registry.Client] satisfies it.
type Pusher interface {
	Push(ctx context.Context, ref, name string, data []byte, opts ...registry.PushOption) (ocispec.Descriptor, error)
}

// Registry pushes each archive to its own repository under a common
// namespace: an archive named "bd.theme.Midnight.asar" delivered to
// namespace "ghcr.io/acme/themes" lands at
// "ghcr.io/acme/themes/bd.theme.midnight:<tag>".
type Registry struct {
	pusher    Pusher
	namespace string
	tag       string
	opts      []registry.PushOption
}

// NewRegistry returns a sink pushing under namespace with the given tag.
// An empty tag means [DefaultTag].
func NewRegistry(pusher Pusher, namespace, tag string, opts ...registry.PushOption) (*Registry, error) {
	namespace = strings.TrimSuffix(namespace, "/")
	if namespace == "" {
		return nil, fmt.Errorf("%w: empty registry namespace", ErrNoDestination)
	}
	if tag == "" {
		tag = DefaultTag
	}
	return &Registry{pusher: pusher, namespace: namespace, tag: tag, opts: opts}, nil
}

// Ref returns the reference an archive named name is pushed to.
func (r *Registry) Ref(name string) string {
	return r.namespace + "/" + repositoryName(name) + ":" + r.tag
}

// Deliver pushes data to Ref(name).
func (r *Registry) Deliver(ctx context.Context, data []byte, name string) error {
	ref := r.Ref(name)
	if _, err := r.pusher.Push(ctx, ref, name, data, r.opts...); err != nil {
		return fmt.Errorf("push %s: %w", ref, err)
	}
	return nil
}

// repositoryName turns an archive name into a repository path component.
// OCI repository components are lowercase alphanumerics joined by single
// separators; other characters become '-' and separator runs collapse.
func repositoryName(name string) string {
	name = strings.TrimSuffix(name, ".asar")
	var sb strings.Builder
	sb.Grow(len(name))
	sep := true // suppresses leading separators
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
			sep = false
		case sep:
		case r == '.' || r == '_':
			sb.WriteRune(r)
			sep = true
		default:
			sb.WriteByte('-')
			sep = true
		}
	}
	out := strings.TrimRight(sb.String(), "._-")
	if out == "" {
		return "theme"
	}
	return out
}

package sink

import (
	"context"
	"fmt"
	"path/filepath"

	asar "github.com/meigma/asar/core"
)

// Dir writes archives into a local directory.
type Dir struct {
	path string
}

// NewDir returns a sink writing into path. The directory is created on
// first delivery.
func NewDir(path string) (*Dir, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty directory", ErrNoDestination)
	}
	return &Dir{path: path}, nil
}

// Path returns the target directory.
func (d *Dir) Path() string {
	return d.path
}

// Deliver atomically writes data to <dir>/<name>, replacing any existing
// file.
func (d *Dir) Deliver(ctx context.Context, data []byte, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := asar.ValidateName(name); err != nil {
		return fmt.Errorf("deliver %q: %w", name, err)
	}
	return asar.SaveFile(filepath.Join(d.path, name), data)
}

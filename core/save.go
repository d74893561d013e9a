package asar

import (
	"fmt"
	"os"
	"path/filepath"
)

// SaveFile writes an archive to path.
//
// Uses atomic writes (temp file + rename) to prevent partial archives on
// failure. Parent directories are created as needed.
func SaveFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create archive directory: %w", err)
	}
	if err := writeFileAtomic(path, data); err != nil {
		return fmt.Errorf("write archive file: %w", err)
	}
	return nil
}

// Save finalizes the builder and writes the archive to path.
func (b *Builder) Save(path string) error {
	data, err := b.Finalize()
	if err != nil {
		return err
	}
	return SaveFile(path, data)
}

// writeFileAtomic writes data to a temp file in the target directory,
// syncs it, then renames it over target. Readers see either the old
// archive or the complete new one.
func writeFileAtomic(target string, data []byte) error {
	dir := filepath.Dir(target)
	tmp, err := os.CreateTemp(dir, ".asar-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, target); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}

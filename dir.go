package asar

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"
	"golang.org/x/sync/errgroup"
)

// IgnoreFile is the name of the file listing paths ConvertDir skips, in
// gitignore syntax, relative to the directory being converted.
const IgnoreFile = ".asarignore"

// ThemeSuffix marks the stylesheets ConvertDir converts.
const ThemeSuffix = ".theme.css"

// defaultIgnores are always skipped.
var defaultIgnores = []string{
	".git",
	"node_modules",
}

// ConvertDir converts every *.theme.css file under dir, recursively.
//
// Paths matched by dir/.asarignore are skipped. Files are converted
// concurrently, up to the limit set by [WithConcurrency]. The first
// failure cancels the remaining conversions and is returned. Archive names
// derive from base file names only, so two themes producing the same name
// fail with [ErrNameCollision] before anything is delivered. Results are
// ordered by path.
func (c *Client) ConvertDir(ctx context.Context, dir string) ([]*Result, error) {
	paths, err := findThemes(dir)
	if err != nil {
		return nil, err
	}
	c.log().Debug("found themes", "dir", dir, "count", len(paths))

	results := make([]*Result, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, path := range paths {
		g.Go(func() error {
			res, err := c.buildFile(gctx, path)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := checkCollisions(results); err != nil {
		return nil, err
	}

	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for _, res := range results {
		g.Go(func() error {
			if err := c.Deliver(gctx, res); err != nil {
				return fmt.Errorf("convert %s: %w", res.Source, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// checkCollisions fails if two results share an archive name.
func checkCollisions(results []*Result) error {
	seen := make(map[string]string, len(results))
	for _, res := range results {
		if prev, ok := seen[res.Name]; ok {
			return fmt.Errorf("%w: %s and %s both convert to %s", ErrNameCollision, prev, res.Source, res.Name)
		}
		seen[res.Name] = res.Source
	}
	return nil
}

// findThemes walks dir and returns the theme stylesheets not excluded by
// the ignore file, in lexical order.
func findThemes(dir string) ([]string, error) {
	ignorer, err := loadIgnore(dir)
	if err != nil {
		return nil, err
	}

	var paths []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if ignorer.MatchesPath(rel + "/") {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !strings.HasSuffix(d.Name(), ThemeSuffix) {
			return nil
		}
		if ignorer.MatchesPath(rel) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}
	return paths, nil
}

// loadIgnore compiles the ignore file in dir, if any, together with the
// default rules.
func loadIgnore(dir string) (*gitignore.GitIgnore, error) {
	path := filepath.Join(dir, IgnoreFile)
	_, err := os.Stat(path)
	switch {
	case err == nil:
		ignorer, err := gitignore.CompileIgnoreFileAndLines(path, defaultIgnores...)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", IgnoreFile, err)
		}
		return ignorer, nil
	case errors.Is(err, fs.ErrNotExist):
		return gitignore.CompileIgnoreLines(defaultIgnores...), nil
	default:
		return nil, fmt.Errorf("stat %s: %w", IgnoreFile, err)
	}
}

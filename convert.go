package asar

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/opencontainers/go-digest"
	"golang.org/x/sync/errgroup"

	asarcore "github.com/meigma/asar/core"
	"github.com/meigma/asar/theme"
)

// Convert packages a stylesheet into a theme archive and delivers it to
// every sink.
//
// fileName is the name the stylesheet is stored under inside the archive
// and the basis of the theme id. If the metadata header is missing or
// unreadable, Convert returns a *MetadataParseError and nothing is
// delivered.
func (c *Client) Convert(ctx context.Context, css, fileName string) (*Result, error) {
	res, err := c.build(ctx, css, fileName)
	if err != nil {
		return nil, err
	}
	if err := c.Deliver(ctx, res); err != nil {
		return nil, err
	}
	return res, nil
}

// ConvertFile reads the stylesheet at path and converts it. The archive
// stores the stylesheet under the base name of path.
func (c *Client) ConvertFile(ctx context.Context, path string) (*Result, error) {
	res, err := c.buildFile(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := c.Deliver(ctx, res); err != nil {
		return nil, fmt.Errorf("convert %s: %w", path, err)
	}
	return res, nil
}

// build converts without delivering.
func (c *Client) build(ctx context.Context, css, fileName string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	a, err := theme.Convert(css, fileName, asarcore.WithLogger(c.logger))
	if err != nil {
		return nil, err
	}
	res := &Result{
		Name:     a.Name,
		Data:     a.Data,
		Manifest: a.Manifest,
		Digest:   digest.FromBytes(a.Data),
	}
	c.log().Debug("converted theme",
		"file", fileName,
		"archive", res.Name,
		"size", len(res.Data),
		"digest", res.Digest,
	)
	return res, nil
}

func (c *Client) buildFile(ctx context.Context, path string) (*Result, error) {
	css, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read theme: %w", err)
	}
	res, err := c.build(ctx, string(css), filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("convert %s: %w", path, err)
	}
	res.Source = path
	return res, nil
}

// ConvertURL downloads the stylesheet at rawURL and converts it. The file
// name comes from the response's Content-Disposition header or the last
// element of the URL path.
func (c *Client) ConvertURL(ctx context.Context, rawURL string) (*Result, error) {
	sheet, err := c.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	res, err := c.Convert(ctx, sheet.CSS, sheet.Name)
	if err != nil {
		return nil, fmt.Errorf("convert %s: %w", rawURL, err)
	}
	res.Source = rawURL
	return res, nil
}

// Deliver hands res to every sink concurrently. All sinks are attempted;
// the first error is returned.
func (c *Client) Deliver(ctx context.Context, res *Result) error {
	if len(c.sinks) == 0 {
		return nil
	}
	var g errgroup.Group
	for _, s := range c.sinks {
		g.Go(func() error {
			if err := s.Deliver(ctx, res.Data, res.Name); err != nil {
				return fmt.Errorf("deliver %s: %w", res.Name, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	c.log().Info("delivered archive", "archive", res.Name, "sinks", len(c.sinks))
	return nil
}

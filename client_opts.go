package asar

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	asarhttp "github.com/meigma/asar/http"
	"github.com/meigma/asar/registry"
	"github.com/meigma/asar/registry/oras"
	"github.com/meigma/asar/sink"
)

// Option configures a Client.
type Option func(*Client) error

// --- Authentication Options ---

// WithDockerConfig enables reading credentials from ~/.docker/config.json.
// This is the recommended way to authenticate with registries.
func WithDockerConfig() Option {
	return func(c *Client) error {
		c.orasOpts = append(c.orasOpts, oras.WithDockerConfig())
		return nil
	}
}

// WithStaticCredentials sets static username/password credentials for a registry.
// The registry parameter should be the registry host (e.g., "ghcr.io").
func WithStaticCredentials(registry, username, password string) Option {
	return func(c *Client) error {
		c.orasOpts = append(c.orasOpts, oras.WithStaticCredentials(registry, username, password))
		return nil
	}
}

// WithStaticToken sets a static bearer token for a registry.
func WithStaticToken(registry, token string) Option {
	return func(c *Client) error {
		c.orasOpts = append(c.orasOpts, oras.WithStaticToken(registry, token))
		return nil
	}
}

// WithAnonymous forces anonymous access, ignoring any configured credentials.
func WithAnonymous() Option {
	return func(c *Client) error {
		c.orasOpts = append(c.orasOpts, oras.WithAnonymous())
		return nil
	}
}

// --- Transport Options ---

// WithPlainHTTP enables plain HTTP (no TLS) for registries.
// This is useful for local development registries.
func WithPlainHTTP(enabled bool) Option {
	return func(c *Client) error {
		c.orasOpts = append(c.orasOpts, oras.WithPlainHTTP(enabled))
		return nil
	}
}

// WithUserAgent sets the User-Agent header for registry requests.
func WithUserAgent(ua string) Option {
	return func(c *Client) error {
		c.orasOpts = append(c.orasOpts, oras.WithUserAgent(ua))
		return nil
	}
}

// WithOCIClient replaces the registry transport. Credential and transport
// options are ignored when it is set.
func WithOCIClient(oci registry.OCIClient) Option {
	return func(c *Client) error {
		if oci == nil {
			return errors.New("oci client is nil")
		}
		c.oci = oci
		return nil
	}
}

// --- Delivery Options ---

// WithSinks appends sinks. Archives are delivered to every sink.
func WithSinks(sinks ...Sink) Option {
	return func(c *Client) error {
		for _, s := range sinks {
			if s == nil {
				return errors.New("sink is nil")
			}
		}
		c.sinks = append(c.sinks, sinks...)
		return nil
	}
}

// WithOutputDir delivers archives into a local directory.
func WithOutputDir(dir string) Option {
	return func(c *Client) error {
		d, err := sink.NewDir(dir)
		if err != nil {
			return err
		}
		c.sinks = append(c.sinks, d)
		return nil
	}
}

// WithS3 delivers archives to an S3 bucket. ctx is only used to load the
// AWS configuration. The sink logs through a logger set by an earlier
// WithLogger.
func WithS3(ctx context.Context, cfg sink.S3Config) Option {
	return func(c *Client) error {
		s, err := sink.NewS3(ctx, cfg, c.logger)
		if err != nil {
			return err
		}
		c.sinks = append(c.sinks, s)
		return nil
	}
}

// WithRegistry pushes every archive to its own repository under namespace,
// tagged tag. See [sink.Registry] for the naming scheme.
func WithRegistry(namespace, tag string, opts ...registry.PushOption) Option {
	return func(c *Client) error {
		if c.registryDest != nil {
			return errors.New("registry destination already configured")
		}
		c.registryDest = &registryDest{namespace: namespace, tag: tag, opts: opts}
		return nil
	}
}

func newRegistrySink(rc *registry.Client, d *registryDest) (*sink.Registry, error) {
	s, err := sink.NewRegistry(rc, d.namespace, d.tag, d.opts...)
	if err != nil {
		return nil, fmt.Errorf("registry sink: %w", err)
	}
	return s, nil
}

// --- Remote Stylesheet Options ---

// WithHTTPClient sets the client ConvertURL downloads with.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) error {
		c.fetchOpts = append(c.fetchOpts, asarhttp.WithClient(client))
		return nil
	}
}

// WithFetchHeader adds a header to ConvertURL requests, e.g. an
// Authorization header for private theme hosts.
func WithFetchHeader(key, value string) Option {
	return func(c *Client) error {
		c.fetchOpts = append(c.fetchOpts, asarhttp.WithHeader(key, value))
		return nil
	}
}

// WithMaxFetchBytes limits the size of stylesheets ConvertURL accepts.
func WithMaxFetchBytes(n int64) Option {
	return func(c *Client) error {
		if n < 1 {
			return fmt.Errorf("max fetch bytes must be positive, got %d", n)
		}
		c.fetchOpts = append(c.fetchOpts, asarhttp.WithMaxBytes(n))
		return nil
	}
}

// --- Behavior Options ---

// WithConcurrency limits how many themes ConvertDir converts at once.
// Values below 1 are rejected.
func WithConcurrency(n int) Option {
	return func(c *Client) error {
		if n < 1 {
			return fmt.Errorf("concurrency must be at least 1, got %d", n)
		}
		c.concurrency = n
		return nil
	}
}

// WithLogger sets the logger for conversion, delivery, and registry
// operations. By default nothing is logged.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) error {
		c.logger = logger
		return nil
	}
}

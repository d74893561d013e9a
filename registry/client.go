package registry

import (
	"log/slog"

	"github.com/meigma/asar/registry/oras"
)

// Client pushes theme archives to OCI registries.
type Client struct {
	oci    OCIClient
	logger *slog.Logger

	// orasOpts are options passed through to the ORAS client when
	// no custom OCIClient is provided.
	orasOpts []oras.Option
}

// Option configures a Client.
type Option func(*Client)

// WithOCIClient sets the low-level registry client.
func WithOCIClient(oci OCIClient) Option {
	return func(c *Client) {
		c.oci = oci
	}
}

// WithLogger sets the logger for push operations.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithOrasOptions passes options to the default ORAS client.
// They are ignored when WithOCIClient is used.
func WithOrasOptions(opts ...oras.Option) Option {
	return func(c *Client) {
		c.orasOpts = append(c.orasOpts, opts...)
	}
}

// log returns the logger, falling back to a discard logger if nil.
func (c *Client) log() *slog.Logger {
	if c.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.logger
}

// New creates a new registry client with the given options.
//
// If no OCIClient is provided via WithOCIClient, a default ORAS-based
// client is created from the options given to WithOrasOptions.
func New(opts ...Option) *Client {
	c := &Client{}
	for _, opt := range opts {
		opt(c)
	}

	if c.oci == nil {
		orasOpts := c.orasOpts
		if c.logger != nil {
			orasOpts = append(orasOpts, oras.WithLogger(c.logger))
		}
		c.oci = oras.New(orasOpts...)
	}

	return c
}

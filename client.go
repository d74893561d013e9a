package asar

import (
	"log/slog"
	"runtime"

	asarhttp "github.com/meigma/asar/http"
	"github.com/meigma/asar/registry"
	"github.com/meigma/asar/registry/oras"
)

// Client converts themes and delivers the archives to its sinks.
//
// A Client is safe for concurrent use once constructed.
type Client struct {
	sinks       []Sink
	concurrency int
	logger      *slog.Logger
	fetchOpts   []asarhttp.Option
	fetcher     *asarhttp.Fetcher

	// orasOpts are options for the underlying ORAS client.
	orasOpts []oras.Option
	oci      registry.OCIClient

	// registry is built after all options are applied so it sees every
	// credential option regardless of order.
	registry     *registry.Client
	registryDest *registryDest
}

type registryDest struct {
	namespace string
	tag       string
	opts      []registry.PushOption
}

// NewClient creates a new client with the given options.
//
// A client without sinks converts themes but delivers them nowhere; use
// [WithOutputDir], [WithRegistry], or [WithSinks] to add destinations.
func NewClient(opts ...Option) (*Client, error) {
	c := &Client{
		concurrency: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	regOpts := []registry.Option{
		registry.WithLogger(c.logger),
		registry.WithOrasOptions(c.orasOpts...),
	}
	if c.oci != nil {
		regOpts = append(regOpts, registry.WithOCIClient(c.oci))
	}
	c.registry = registry.New(regOpts...)
	c.fetcher = asarhttp.NewFetcher(c.fetchOpts...)

	if d := c.registryDest; d != nil {
		s, err := newRegistrySink(c.registry, d)
		if err != nil {
			return nil, err
		}
		c.sinks = append(c.sinks, s)
	}
	return c, nil
}

// log returns the logger, falling back to a discard logger if nil.
func (c *Client) log() *slog.Logger {
	if c.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.logger
}

// Sinks returns the configured sinks in delivery order.
func (c *Client) Sinks() []Sink {
	out := make([]Sink, len(c.sinks))
	copy(out, c.sinks)
	return out
}

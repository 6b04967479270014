// Package dotup exposes the bootstrap pipeline for embedding in other Go
// programs.
//
// # Basic usage
//
//	client, err := dotup.New(dotup.Options{ConfigPath: "dotup.yaml"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result := client.Run(ctx, pipeline.Options{Force: true})
//	os.Exit(result.ExitCode())
package dotup

import (
	"context"
	"time"

	"dotup/internal/config"
	"dotup/internal/dotsync"
	"dotup/internal/fetch"
	"dotup/internal/pipeline"
	"dotup/internal/profile"
	"dotup/internal/repo"
)

// Default HTTP timeouts for resource downloads.
const (
	DefaultConnectTimeout = 10 * time.Second
	DefaultTotalTimeout   = 60 * time.Second
)

// Options configures a Client.
type Options struct {
	// ConfigPath locates the dotup.yaml file. Defaults to "dotup.yaml".
	ConfigPath string
	// DryRun makes every stage report would-be actions without writing.
	DryRun bool
	// HTTPClient overrides the HTTP client used for resource downloads.
	HTTPClient fetch.HTTPClient
}

// Client runs the bootstrap pipeline against a loaded configuration.
type Client struct {
	cfg *config.Config
	p   *pipeline.Pipeline
}

// New loads and validates the configuration and wires up all stages.
func New(opts Options) (*Client, error) {
	path := opts.ConfigPath
	if path == "" {
		path = "dotup.yaml"
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	p := NewPipeline(cfg, opts.DryRun)
	if opts.HTTPClient != nil {
		p.Fetcher.Client = opts.HTTPClient
	}
	return &Client{cfg: cfg, p: p}, nil
}

// NewPipeline builds a pipeline with all stages wired to cfg.
func NewPipeline(cfg *config.Config, dryRun bool) *pipeline.Pipeline {
	fetcher := fetch.New(fetch.NewHTTPClient(DefaultConnectTimeout, DefaultTotalTimeout))
	fetcher.DryRun = dryRun

	syncer := dotsync.New()
	syncer.DryRun = dryRun

	linker := profile.New()
	linker.DryRun = dryRun

	return &pipeline.Pipeline{
		Fetcher: fetcher,
		Updater: repo.New(cfg.Repo.Remote, cfg.Repo.ProbeTimeout.Std()),
		Syncer:  syncer,
		Linker:  linker,
	}
}

// Config returns the loaded configuration.
func (c *Client) Config() *config.Config {
	return c.cfg
}

// Run executes the full stage sequence.
func (c *Client) Run(ctx context.Context, opts pipeline.Options) *pipeline.RunResult {
	return c.p.Run(ctx, c.cfg, opts)
}

// Package di provides dependency injection container
package di

import (
	"os"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"github.com/ssargent/odbconv/pkg/api"     //nolint:depguard
	"github.com/ssargent/odbconv/pkg/config"  //nolint:depguard
	"github.com/ssargent/odbconv/pkg/convert" //nolint:depguard
	"github.com/ssargent/odbconv/pkg/metrics" //nolint:depguard
	"github.com/ssargent/odbconv/pkg/storage" //nolint:depguard
)

// Container holds all the dependencies for the application. Metrics and the
// run archive are created on first use.
type Container struct {
	mu sync.Mutex

	config         *config.Config
	logger         zerolog.Logger
	runtimeMetrics bool

	metrics       *metrics.Metrics
	archive       *storage.DefaultStorage
	serverFactory api.ServerFactory
}

// NewContainer creates a new dependency injection container with default
// configuration and a disabled logger
func NewContainer() *Container {
	return &Container{
		config:        config.DefaultConfig(),
		logger:        zerolog.Nop(),
		serverFactory: api.NewServerFactory(),
	}
}

// Configure replaces the configuration and logger. It must be called before
// any dependency is created.
func (c *Container) Configure(cfg *config.Config, logger zerolog.Logger) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.config = cfg
	c.logger = logger
}

// EnableRuntimeMetrics adds Go runtime and process collectors to the
// registry. Long running servers want them; textfile exports do not.
func (c *Container) EnableRuntimeMetrics() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.runtimeMetrics = true
}

// Config returns the active configuration
func (c *Container) Config() *config.Config {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.config
}

// Logger returns the application logger
func (c *Container) Logger() zerolog.Logger {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.logger
}

// Metrics returns the shared metrics instance
func (c *Container) Metrics() *metrics.Metrics {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.metricsLocked()
}

func (c *Container) metricsLocked() *metrics.Metrics {
	if c.metrics == nil {
		if c.runtimeMetrics {
			c.metrics = metrics.New(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)
		} else {
			c.metrics = metrics.New()
		}
	}
	return c.metrics
}

// Archive returns the run archive, or nil when archiving is disabled
func (c *Container) Archive() (*storage.DefaultStorage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.archiveLocked()
}

func (c *Container) archiveLocked() (*storage.DefaultStorage, error) {
	if !c.config.Archive.Enabled {
		return nil, nil
	}
	if c.archive != nil {
		return c.archive, nil
	}

	dir := c.config.ArchiveDir()
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, errors.Wrapf(err, "failed to create archive directory %s", dir)
	}
	archive, err := storage.NewDefaultStorage(dir)
	if err != nil {
		return nil, err
	}
	c.archive = archive
	return archive, nil
}

// Converter builds a converter wired to the configured metrics and archive
func (c *Container) Converter() (*convert.Converter, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	archive, err := c.archiveLocked()
	if err != nil {
		return nil, err
	}

	opts := convert.Options{
		Comma:         c.config.Delimiter(),
		WriteBOM:      c.config.Tabular.WriteBOM,
		LF:            c.config.Tabular.LineEnding == config.LineEndingLF,
		MaxInputBytes: c.config.Limits.MaxInputBytes,
	}

	// A nil *DefaultStorage must not become a non-nil interface.
	var a convert.Archive
	if archive != nil {
		a = archive
	}
	return convert.New(opts, c.logger, c.metricsLocked(), a), nil
}

// ServerDependencies collects what the API server needs
func (c *Container) ServerDependencies() (api.Dependencies, error) {
	converter, err := c.Converter()
	if err != nil {
		return api.Dependencies{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	deps := api.Dependencies{
		Converter: converter,
		Metrics:   c.metricsLocked(),
		Logger:    c.logger,
	}
	if c.archive != nil {
		deps.Runs = c.archive
	}
	return deps, nil
}

// GetServerFactory returns the server factory
func (c *Container) GetServerFactory() api.ServerFactory {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.serverFactory
}

// SetServerFactory allows overriding the server factory (for testing)
func (c *Container) SetServerFactory(factory api.ServerFactory) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.serverFactory = factory
}

// Close releases the run archive if it was opened
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.archive == nil {
		return nil
	}
	err := c.archive.Close()
	c.archive = nil
	return err
}

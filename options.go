package trec

import (
	"math/rand"

	"github.com/charmbracelet/log"

	"github.com/Arrrttyyyys/TREC/media"
)

// Option is a functional option for configuring a new Generator.
type Option func(*generatorConfig)

type generatorConfig struct {
	cfg          Config
	logger       *log.Logger
	resolver     media.Resolver
	templatePath string
	randSource   rand.Source
}

// WithConfig replaces the default generation settings.
func WithConfig(cfg Config) Option {
	return func(c *generatorConfig) {
		c.cfg = cfg
	}
}

// WithLogger sets the diagnostic logger. The default discards everything.
func WithLogger(logger *log.Logger) Option {
	return func(c *generatorConfig) {
		c.logger = logger
	}
}

// WithResolver replaces the remote media resolver. Useful for tests and for
// callers that cache or proxy image fetches.
func WithResolver(res media.Resolver) Option {
	return func(c *generatorConfig) {
		c.resolver = res
	}
}

// WithTemplatePath sets the blank TREC form PDF used as the page background.
// An empty path, a missing file, or an unreadable template all fall back to
// drawing pages from scratch.
func WithTemplatePath(path string) Option {
	return func(c *generatorConfig) {
		c.templatePath = path
	}
}

// WithRandSource sets the randomness source used when a finding carries no
// status. Fix the source in tests for deterministic output.
func WithRandSource(src rand.Source) Option {
	return func(c *generatorConfig) {
		c.randSource = src
	}
}

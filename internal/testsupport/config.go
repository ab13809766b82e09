// Package testsupport provides shared helpers for package tests.
package testsupport

import (
	"path/filepath"
	"testing"

	"dupefinder/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t   testing.TB
	cfg *config.Config
}

// NewConfig produces a config seeded with a unique temp log directory per
// test. It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	cfgVal := config.Default()
	cfgVal.Plex.URL = "http://127.0.0.1:32400"
	cfgVal.Plex.Token = "test-token"
	cfgVal.Plex.Libraries = []string{"Movies"}
	cfgVal.Runtime.LogDir = filepath.Join(t.TempDir(), "logs")
	cfgVal.Runtime.DeleteSpacingSeconds = 0

	builder := &configBuilder{t: t, cfg: &cfgVal}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithLibraries overrides the scanned sections on the test config.
func WithLibraries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Plex.Libraries = names
	}
}

// WithRuntime mutates the runtime block on the test config.
func WithRuntime(mutate func(*config.Runtime)) ConfigOption {
	return func(b *configBuilder) {
		mutate(&b.cfg.Runtime)
	}
}

// WithSkipList sets the deletion skip list on the test config.
func WithSkipList(entries ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.SkipList = entries
	}
}

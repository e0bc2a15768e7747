// SPDX-License-Identifier: MPL-2.0

package config

import "context"

type (
	// LoadOptions defines explicit configuration loading inputs.
	LoadOptions struct {
		// ConfigFilePath forces loading from a specific config file when set.
		ConfigFilePath string
		// ConfigDirPath overrides the config directory lookup when set.
		ConfigDirPath string
	}

	// Provider loads configuration from explicit options.
	Provider interface {
		// Load returns the effective configuration and the path of the file
		// it was read from ("" when only defaults and environment applied).
		Load(ctx context.Context, opts LoadOptions) (*Config, string, error)
	}

	fileProvider struct{}

	staticProvider struct {
		cfg *Config
	}
)

// NewProvider creates a configuration provider reading CUE files.
func NewProvider() Provider {
	return &fileProvider{}
}

// NewStaticProvider returns a provider that always yields cfg. Tests use it
// to run commands without touching the filesystem.
func NewStaticProvider(cfg *Config) Provider {
	return &staticProvider{cfg: cfg}
}

// Load reads configuration from the requested source.
func (p *fileProvider) Load(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	return loadWithOptions(ctx, opts)
}

func (p *staticProvider) Load(context.Context, LoadOptions) (*Config, string, error) {
	cfg := *p.cfg
	return &cfg, "", nil
}

package engine

import (
	"context"
	"fmt"

	"github.com/viant/afs"
	"github.com/viant/remedy/logging"
	"gopkg.in/yaml.v3"
)

// Config is the engine configuration file.
type Config struct {
	// Root is the base URL relative finding paths resolve against.
	Root   string `yaml:"root" mapstructure:"root"`
	DryRun bool   `yaml:"dryRun" mapstructure:"dry_run"`
	// Rules maps analyzer rule ids to builtin remediations, e.g.
	// java/sql-injection: sql-injection.
	Rules  map[string]string `yaml:"rules" mapstructure:"rules"`
	Logger logging.Config    `yaml:"logger" mapstructure:"logger"`
}

// LoadConfig reads a YAML config from URL.
func LoadConfig(ctx context.Context, fs afs.Service, URL string) (*Config, error) {
	data, err := fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", URL, err)
	}
	cfg := &Config{}
	if err = yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", URL, err)
	}
	return cfg, nil
}

// Registry builds the builtin registry extended with the configured aliases.
func (c *Config) Registry() (*Registry, error) {
	registry := NewRegistry()
	for alias, rule := range c.Rules {
		if err := registry.Alias(alias, rule); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// Options converts the config into service options.
func (c *Config) Options() ([]Option, error) {
	registry, err := c.Registry()
	if err != nil {
		return nil, err
	}
	return []Option{WithRoot(c.Root), WithDryRun(c.DryRun), WithRegistry(registry)}, nil
}

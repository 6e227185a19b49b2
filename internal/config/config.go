package config

import (
	"fmt"
	"os"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/probelab/keycheck/internal/providerspec"
)

// ProviderOverride redirects one provider at a different base URL, for
// self-hosted gateways and test fixtures.
type ProviderOverride struct {
	BaseURL string `yaml:"base_url" json:"base_url"`
}

// RateLimitConfig bounds check requests per client identity.
type RateLimitConfig struct {
	Requests int `yaml:"requests" json:"requests"`
	WindowMS int `yaml:"window_ms" json:"window_ms"`
}

// Config is the service configuration file.
type Config struct {
	Server struct {
		Addr      string          `yaml:"addr" json:"addr"`
		RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`
	} `yaml:"server" json:"server"`

	Probe struct {
		TimeoutMS int `yaml:"timeout_ms" json:"timeout_ms"`
	} `yaml:"probe" json:"probe"`

	Providers map[string]ProviderOverride `yaml:"providers,omitempty" json:"providers,omitempty"`

	// AllowedModelGlobs restricts which target models strict mode may
	// probe. Empty means no restriction.
	AllowedModelGlobs []string `yaml:"allowed_model_globs,omitempty" json:"allowed_model_globs,omitempty"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.Server.Addr = ":8380"
	cfg.Server.RateLimit.Requests = 20
	cfg.Server.RateLimit.WindowMS = 60_000
	cfg.Probe.TimeoutMS = 8_000
	return cfg
}

// Load reads and validates a YAML config file, filling in defaults for
// anything unset.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.RateLimit.Requests <= 0 {
		return fmt.Errorf("server.rate_limit.requests must be positive")
	}
	if c.Server.RateLimit.WindowMS <= 0 {
		return fmt.Errorf("server.rate_limit.window_ms must be positive")
	}
	if c.Probe.TimeoutMS <= 0 {
		return fmt.Errorf("probe.timeout_ms must be positive")
	}
	for name := range c.Providers {
		if _, ok := providerspec.CanonicalKey(name); !ok {
			return fmt.Errorf("providers.%s: unknown provider", name)
		}
	}
	for _, g := range c.AllowedModelGlobs {
		if !doublestar.ValidatePattern(g) {
			return fmt.Errorf("allowed_model_globs: invalid pattern %q", g)
		}
	}
	return nil
}

// ProbeTimeout returns the per-call probe deadline.
func (c *Config) ProbeTimeout() time.Duration {
	return time.Duration(c.Probe.TimeoutMS) * time.Millisecond
}

// RateWindow returns the rate-limit window.
func (c *Config) RateWindow() time.Duration {
	return time.Duration(c.Server.RateLimit.WindowMS) * time.Millisecond
}

// ModelAllowed reports whether strict mode may probe the model. An empty
// glob list allows everything.
func (c *Config) ModelAllowed(model string) bool {
	if len(c.AllowedModelGlobs) == 0 {
		return true
	}
	for _, g := range c.AllowedModelGlobs {
		if ok, err := doublestar.Match(g, model); err == nil && ok {
			return true
		}
	}
	return false
}

// Package config enables config file parsing.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"

	"github.com/farmkit/stratreg/common"
	"github.com/farmkit/stratreg/log"
	"github.com/farmkit/stratreg/registry"
)

// Config contains the CLI configuration.
type Config struct {
	Registry *RegistryConfig `koanf:"registry"`
	Server   *ServerConfig   `koanf:"server"`
	Log      *LogConfig      `koanf:"log"`
	Metrics  *MetricsConfig  `koanf:"metrics"`
}

// Validate performs config validation.
func (cfg *Config) Validate() error {
	if cfg.Registry != nil {
		if err := cfg.Registry.Validate(); err != nil {
			return fmt.Errorf("registry: %w", err)
		}
	}
	if cfg.Server != nil {
		if err := cfg.Server.Validate(); err != nil {
			return fmt.Errorf("server: %w", err)
		}
	}
	if cfg.Log != nil {
		if err := cfg.Log.Validate(); err != nil {
			return fmt.Errorf("log: %w", err)
		}
	}
	if cfg.Metrics != nil {
		if err := cfg.Metrics.Validate(); err != nil {
			return fmt.Errorf("metrics: %w", err)
		}
	}

	return nil
}

// RegistryConfig controls which strategies get loaded and which token and
// address tables they are resolved against.
type RegistryConfig struct {
	// ChainName restricts the loaded strategies to one chain. Empty means
	// every chain.
	ChainName common.ChainName `koanf:"chain_name"`

	// StrategiesFile is an optional YAML file of operator-authored
	// strategy entries, loaded after the built-in ones.
	StrategiesFile string `koanf:"strategies_file"`

	// If set, the built-in strategy entries are skipped and only
	// StrategiesFile is used.
	DisableBuiltin bool `koanf:"disable_builtin"`

	// Tokens and Addresses are overlays on top of the default registries,
	// keyed by chain and then symbol. Values are hex addresses.
	Tokens    map[common.ChainName]map[string]string `koanf:"tokens"`
	Addresses map[common.ChainName]map[string]string `koanf:"addresses"`
}

// Validate validates the registry configuration.
func (cfg *RegistryConfig) Validate() error {
	if cfg.DisableBuiltin && cfg.StrategiesFile == "" {
		return fmt.Errorf("disable_builtin set without a strategies_file, nothing would be loaded")
	}
	tokens, err := cfg.TokenRegistry()
	if err != nil {
		return err
	}
	addrs, err := cfg.AddressRegistry()
	if err != nil {
		return err
	}
	if cfg.ChainName != "" && !(tokens.Has(cfg.ChainName) && addrs.Has(cfg.ChainName)) {
		return fmt.Errorf("chain_name '%s' is not known to both the token and address registries", cfg.ChainName)
	}
	return nil
}

// TokenRegistry returns the default token registry with the configured
// overlay applied.
func (cfg *RegistryConfig) TokenRegistry() (*registry.Registry, error) {
	return overlay(registry.DefaultTokens(), registry.KindTokens, cfg.Tokens)
}

// AddressRegistry returns the default address registry with the configured
// overlay applied.
func (cfg *RegistryConfig) AddressRegistry() (*registry.Registry, error) {
	return overlay(registry.DefaultAddresses(), registry.KindAddresses, cfg.Addresses)
}

func overlay(base *registry.Registry, kind registry.Kind, raw map[common.ChainName]map[string]string) (*registry.Registry, error) {
	if len(raw) == 0 {
		return base, nil
	}
	extra, err := registry.New(kind, raw)
	if err != nil {
		return nil, err
	}
	return base.Merge(extra), nil
}

// ServerConfig contains the API server configuration.
type ServerConfig struct {
	// Endpoint is the service endpoint from which to serve the API.
	Endpoint string `koanf:"endpoint"`

	// RequestTimeout is the maximum time a request may take. Defaults to
	// 10 seconds.
	RequestTimeout *time.Duration `koanf:"request_timeout"`
}

// Validate validates the server configuration.
func (cfg *ServerConfig) Validate() error {
	if cfg.Endpoint == "" {
		return fmt.Errorf("malformed server endpoint '%s'", cfg.Endpoint)
	}
	if cfg.RequestTimeout != nil && *cfg.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive")
	}
	return nil
}

// Timeout returns the request timeout, applying the default.
func (cfg *ServerConfig) Timeout() time.Duration {
	if cfg.RequestTimeout == nil {
		return 10 * time.Second
	}
	return *cfg.RequestTimeout
}

// LogConfig contains the logging configuration.
type LogConfig struct {
	Format string `koanf:"format"`
	Level  string `koanf:"level"`
	File   string `koanf:"file"`
}

// Validate validates the logging configuration.
func (cfg *LogConfig) Validate() error {
	var format log.Format
	if err := format.Set(cfg.Format); err != nil {
		return err
	}
	var level log.Level
	return level.Set(cfg.Level)
}

// MetricsConfig contains the metrics configuration.
type MetricsConfig struct {
	PullEndpoint string `koanf:"pull_endpoint"`

	// PprofEndpoint, if set, additionally serves the Go profiler.
	PprofEndpoint string `koanf:"pprof_endpoint"`
}

// Validate validates the metrics configuration.
func (cfg *MetricsConfig) Validate() error {
	if cfg.PullEndpoint == "" {
		return fmt.Errorf("malformed Prometheus pull endpoint '%s'", cfg.PullEndpoint)
	}
	return nil
}

// InitConfig initializes configuration from file. An empty path yields the
// defaults, still subject to environment overrides.
func InitConfig(f string) (*Config, error) {
	if f == "" {
		return initConfig(rawbytes.Provider([]byte("{}")))
	}
	return initConfig(file.Provider(f))
}

func initConfig(p koanf.Provider) (*Config, error) {
	var config Config
	k := koanf.New(".")

	// Load configuration from the yaml config.
	if err := k.Load(p, yaml.Parser()); err != nil {
		return nil, err
	}

	// Load environment variables and merge into the loaded config.
	if err := k.Load(env.Provider("STRATREG_", ".", func(s string) string {
		// `__` is used as a hierarchy delimiter.
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "STRATREG_")), "__", ".")
	}), nil); err != nil {
		return nil, err
	}

	// Unmarshal into config.
	if err := k.Unmarshal("", &config); err != nil {
		return nil, err
	}

	// Validate config.
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

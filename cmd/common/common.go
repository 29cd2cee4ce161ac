// Package common implements common stratreg command options.
package common

import (
	"fmt"
	"io"
	"os"

	"github.com/farmkit/stratreg/config"
	"github.com/farmkit/stratreg/log"
	"github.com/farmkit/stratreg/metrics"
	"github.com/farmkit/stratreg/registry"
	"github.com/farmkit/stratreg/strategies"
)

var rootLogger = log.NewDefaultLogger("stratreg")

// Init initializes the common environment.
func Init(cfg *config.Config) error {
	var w io.Writer = os.Stderr
	format := log.FmtLogfmt
	level := log.LevelInfo

	if cfg.Log != nil {
		var err error
		if w, err = getLoggingStream(cfg.Log); err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		if err := format.Set(cfg.Log.Format); err != nil {
			return err
		}
		if err := level.Set(cfg.Log.Level); err != nil {
			return err
		}
	}
	logger, err := log.NewLogger("stratreg", w, format, level)
	if err != nil {
		return err
	}
	rootLogger = logger

	return nil
}

// RootLogger returns the logger defined by logging flags.
func RootLogger() *log.Logger {
	return rootLogger
}

func getLoggingStream(cfg *config.LogConfig) (io.Writer, error) {
	if cfg == nil || cfg.File == "" {
		return os.Stderr, nil
	}
	w, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, err
	}
	return w, nil
}

// Registries are the token and address tables strategies were built against.
type Registries struct {
	Tokens    *registry.Registry
	Addresses *registry.Registry
}

// LoadStrategies assembles the configured strategy entries, builds them
// against the configured registries and installs the result as the
// process-wide list.
func LoadStrategies(cfg *config.RegistryConfig) (*strategies.List, *Registries, error) {
	logger := rootLogger.WithModule("registry")
	m := metrics.NewDefaultRegistryMetrics("stratreg")
	if cfg == nil {
		cfg = &config.RegistryConfig{}
	}

	tokens, err := cfg.TokenRegistry()
	if err != nil {
		return nil, nil, err
	}
	addrs, err := cfg.AddressRegistry()
	if err != nil {
		return nil, nil, err
	}

	var sources []strategies.Source
	if !cfg.DisableBuiltin {
		sources = append(sources, strategies.Source{Name: strategies.SourceBuiltin, Params: strategies.LevConvex()})
	}
	if cfg.StrategiesFile != "" {
		extra, err := strategies.LoadParamsFile(cfg.StrategiesFile)
		if err != nil {
			return nil, nil, err
		}
		logger.Debug("loaded operator strategies", "file", cfg.StrategiesFile, "count", len(extra))
		sources = append(sources, strategies.Source{Name: cfg.StrategiesFile, Params: extra})
	}

	// Every entry is validated, whichever chain it is on.
	l, err := strategies.BuildSources(tokens, addrs, sources...)
	if err == nil {
		if cfg.ChainName != "" {
			l = l.OnChain(cfg.ChainName)
		}
		err = strategies.Install(l)
	}
	if err != nil {
		m.Builds(metrics.BuildStatusFailure).Inc()
		logger.Error("failed to build strategy list", "err", err)
		return nil, nil, err
	}
	m.Builds(metrics.BuildStatusSuccess).Inc()

	counts := make(map[string]int)
	for chain, n := range l.CountByChain() {
		counts[string(chain)] = n
	}
	m.SetStrategies(counts)
	logger.Info("strategy list built", "strategies", l.Len())

	return l, &Registries{Tokens: tokens, Addresses: addrs}, nil
}

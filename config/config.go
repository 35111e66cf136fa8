// Package config loads the router's configuration options from a YAML file
// via a "flag -config path, gopkg.in/yaml.v3 Unmarshal" bootstrap.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/swaphop/router-core/costmodel"
)

// Config is the router's external configuration: default k, default
// slippage, a per-exchange gas override table, and the edge-weight
// coefficients.
type Config struct {
	// K is the default number of candidate routes find_routes returns when a
	// caller does not override it per request.
	K int `yaml:"k"`

	// DefaultSlippage is the per-hop slippage tolerance applied during
	// simulation when a caller does not override it per request.
	DefaultSlippage float64 `yaml:"default_slippage"`

	// ExchangeGasTable overrides the built-in per-exchange gas adjustments
	// (see costmodel.GasEstimate) for exchange tags present here. Exchanges
	// absent from this map keep the built-in table's behavior.
	ExchangeGasTable map[string]int64 `yaml:"exchange_gas_table"`

	// WeightCoefficients are the (price impact, gas, slippage) weights the
	// search stage uses to rank candidate edges; they must be non-negative
	// and sum to 1.0.
	WeightCoefficients Coefficients `yaml:"weight_coefficients"`

	// MetricsAddr, when non-empty, is the listen address cmd/routerd binds
	// promhttp's /metrics handler to.
	MetricsAddr string `yaml:"metrics_addr"`
}

// Coefficients mirrors costmodel.Coefficients with YAML tags, so a config
// file can override the default 0.6/0.3/0.1 edge-weight split.
type Coefficients struct {
	PriceImpact float64 `yaml:"price_impact"`
	GasCost     float64 `yaml:"gas_cost"`
	Slippage    float64 `yaml:"slippage"`
}

// Default returns the router's default configuration: k=5,
// default_slippage=0.005, the built-in costmodel coefficients and gas table.
func Default() Config {
	return Config{
		K:               5,
		DefaultSlippage: costmodel.DefaultSlippage,
		WeightCoefficients: Coefficients{
			PriceImpact: costmodel.DefaultCoefficients.PriceImpact,
			GasCost:     costmodel.DefaultCoefficients.GasCost,
			Slippage:    costmodel.DefaultCoefficients.Slippage,
		},
	}
}

// Load reads and parses a YAML config file at path, filling any field left
// zero in the file with Default()'s value.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate enforces the configuration bounds: k >= 1,
// default_slippage in [0, 1], and coefficients non-negative summing to 1.0
// (within floating-point tolerance).
func (c Config) Validate() error {
	if c.K < 1 {
		return fmt.Errorf("config: k must be >= 1, got %d", c.K)
	}
	if c.DefaultSlippage < 0 || c.DefaultSlippage > 1 {
		return fmt.Errorf("config: default_slippage must be in [0,1], got %f", c.DefaultSlippage)
	}
	wc := c.WeightCoefficients
	if wc.PriceImpact < 0 || wc.GasCost < 0 || wc.Slippage < 0 {
		return fmt.Errorf("config: weight_coefficients must be non-negative")
	}
	sum := wc.PriceImpact + wc.GasCost + wc.Slippage
	const tolerance = 1e-9
	if sum < 1-tolerance || sum > 1+tolerance {
		return fmt.Errorf("config: weight_coefficients must sum to 1.0, got %f", sum)
	}
	return nil
}

// CostModelCoefficients converts the YAML-friendly Coefficients into the
// costmodel package's type.
func (c Config) CostModelCoefficients() costmodel.Coefficients {
	return costmodel.Coefficients{
		PriceImpact: c.WeightCoefficients.PriceImpact,
		GasCost:     c.WeightCoefficients.GasCost,
		Slippage:    c.WeightCoefficients.Slippage,
	}
}

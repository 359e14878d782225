// Package config loads engine and server settings from defaults, an
// optional YAML file and CORPVAL_* environment variables.
package config

import (
	"fmt"
	"math"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	Engine    EngineConfig    `mapstructure:"engine"    yaml:"engine"    json:"engine"`
	Solver    SolverConfig    `mapstructure:"solver"    yaml:"solver"    json:"solver"`
	Multiples MultiplesConfig `mapstructure:"multiples" yaml:"multiples" json:"multiples"`
	Scenarios ScenariosConfig `mapstructure:"scenarios" yaml:"scenarios" json:"scenarios"`
	API       APIConfig       `mapstructure:"api"       yaml:"api"       json:"api"`
}

// EngineConfig bounds parallel fan-out.
type EngineConfig struct {
	Workers int `mapstructure:"workers" yaml:"workers" json:"workers"` // Max scenarios / grid cells in flight
}

// SolverConfig bounds the IRR root search.
type SolverConfig struct {
	Lower         float64 `mapstructure:"lower"          yaml:"lower"          json:"lower"`
	Upper         float64 `mapstructure:"upper"          yaml:"upper"          json:"upper"`
	Tolerance     float64 `mapstructure:"tolerance"      yaml:"tolerance"      json:"tolerance"`
	MaxIterations int     `mapstructure:"max_iterations" yaml:"max_iterations" json:"max_iterations"`
}

// MultiplesConfig holds the outlier band, as fractions.
type MultiplesConfig struct {
	LowPercentile  float64 `mapstructure:"low_percentile"  yaml:"low_percentile"  json:"low_percentile"`
	HighPercentile float64 `mapstructure:"high_percentile" yaml:"high_percentile" json:"high_percentile"`
}

// ScenarioDelta shifts the base case. Growth and margin are absolute
// (0.02 = +2pp); exit multiple is in turns of EBITDA.
type ScenarioDelta struct {
	Growth       float64 `mapstructure:"growth"        yaml:"growth"        json:"growth"`
	Margin       float64 `mapstructure:"margin"        yaml:"margin"        json:"margin"`
	ExitMultiple float64 `mapstructure:"exit_multiple" yaml:"exit_multiple" json:"exit_multiple"`
}

// ScenariosConfig holds the deltas for the non-base scenarios.
type ScenariosConfig struct {
	Optimistic  ScenarioDelta `mapstructure:"optimistic"  yaml:"optimistic"  json:"optimistic"`
	Pessimistic ScenarioDelta `mapstructure:"pessimistic" yaml:"pessimistic" json:"pessimistic"`
}

// APIConfig holds HTTP server settings.
type APIConfig struct {
	Host           string   `mapstructure:"host"            yaml:"host"            json:"host"`
	Port           int      `mapstructure:"port"            yaml:"port"            json:"port"`
	CORSOrigins    []string `mapstructure:"cors_origins"    yaml:"cors_origins"    json:"cors_origins"`
	TimeoutSeconds int      `mapstructure:"timeout_seconds" yaml:"timeout_seconds" json:"timeout_seconds"`
}

const envPrefix = "CORPVAL"

// Load reads the configuration from ./config/config.yaml (optional) and
// environment variables. Format: CORPVAL_<SECTION>_<KEY>, e.g.
// CORPVAL_ENGINE_WORKERS.
func Load() (*Config, error) {
	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return decode(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}
	return decode(v)
}

// Default returns the built-in defaults without touching files or env.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	cfg, err := decode(v)
	if err != nil {
		panic(err) // defaults are static
	}
	return cfg
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("engine.workers", 8)

	v.SetDefault("solver.lower", -0.99)
	v.SetDefault("solver.upper", 10.0)
	v.SetDefault("solver.tolerance", 1e-10)
	v.SetDefault("solver.max_iterations", 200)

	v.SetDefault("multiples.low_percentile", 0.05)
	v.SetDefault("multiples.high_percentile", 0.95)

	v.SetDefault("scenarios.optimistic.growth", 0.02)
	v.SetDefault("scenarios.optimistic.margin", 0.02)
	v.SetDefault("scenarios.optimistic.exit_multiple", 1.0)
	v.SetDefault("scenarios.pessimistic.growth", -0.02)
	v.SetDefault("scenarios.pessimistic.margin", -0.02)
	v.SetDefault("scenarios.pessimistic.exit_multiple", -1.0)

	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.cors_origins", []string{"http://localhost:3000"})
	v.SetDefault("api.timeout_seconds", 30)
}

// Validate rejects settings the engines cannot run with.
func (c *Config) Validate() error {
	if c.Engine.Workers < 1 {
		return fmt.Errorf("engine.workers must be at least 1, got %d", c.Engine.Workers)
	}
	if !(c.Solver.Lower > -1 && c.Solver.Lower < c.Solver.Upper) || math.IsInf(c.Solver.Upper, 0) {
		return fmt.Errorf("solver interval [%v, %v] is invalid", c.Solver.Lower, c.Solver.Upper)
	}
	if !(c.Solver.Tolerance > 0) || c.Solver.MaxIterations < 1 {
		return fmt.Errorf("solver tolerance and max_iterations must be positive")
	}
	m := c.Multiples
	if math.IsNaN(m.LowPercentile) || math.IsNaN(m.HighPercentile) || m.LowPercentile < 0 || m.HighPercentile > 1 || m.LowPercentile > m.HighPercentile {
		return fmt.Errorf("multiples percentile band [%v, %v] is invalid", m.LowPercentile, m.HighPercentile)
	}
	if c.API.TimeoutSeconds < 1 {
		return fmt.Errorf("api.timeout_seconds must be at least 1, got %d", c.API.TimeoutSeconds)
	}
	if c.API.Port < 1 || c.API.Port > 65535 {
		return fmt.Errorf("api.port %d is out of range", c.API.Port)
	}
	return nil
}

// Addr is the listen address for the API server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.API.Host, c.API.Port)
}

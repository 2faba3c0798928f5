// SPDX-License-Identifier: MIT

// Package config loads the daemon configuration from a YAML file and
// BIODIVINE_* environment variables. Environment variables override
// file values, file values override defaults.
package config

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds every tunable of the analysis daemon.
type Config struct {
	// Listen is the address the HTTP API binds to.
	Listen string `yaml:"listen"`

	// DataDir is the root directory for persistent state (job store,
	// model database, exported results).
	DataDir string `yaml:"data_dir"`

	// ModelsDir, when set, is watched for .aeon files which are
	// imported automatically.
	ModelsDir string `yaml:"models_dir"`

	// APIToken protects the /api/v1 surface. Leaving it empty is only
	// valid together with AllowAnonymous.
	APIToken string `yaml:"api_token"`

	// AllowAnonymous explicitly opts into running without a token.
	AllowAnonymous bool `yaml:"allow_anonymous"`

	LogLevel string `yaml:"log_level"`

	// Workers is the parallelism used by reachability computations.
	// Zero means runtime.NumCPU.
	Workers int `yaml:"workers"`

	// MaxConns caps concurrently accepted TCP connections.
	MaxConns int `yaml:"max_conns"`

	RateLimit RateLimit `yaml:"rate_limit"`
	Cache     Cache     `yaml:"cache"`
	Telemetry Telemetry `yaml:"telemetry"`
}

// RateLimit configures per-client request limiting on the HTTP API.
type RateLimit struct {
	RequestsPerMinute int           `yaml:"requests_per_minute"`
	Window            time.Duration `yaml:"window"`
}

// Cache selects the analysis-result cache backend.
type Cache struct {
	// Backend is "memory", "redis" or "none".
	Backend string        `yaml:"backend"`
	TTL     time.Duration `yaml:"ttl"`

	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
}

// Telemetry configures the OpenTelemetry trace exporter.
type Telemetry struct {
	Enabled bool `yaml:"enabled"`
	// Exporter is "grpc" or "http".
	Exporter   string  `yaml:"exporter"`
	Endpoint   string  `yaml:"endpoint"`
	SampleRate float64 `yaml:"sample_rate"`
}

// Default returns the configuration used when neither file nor
// environment provide a value.
func Default() Config {
	return Config{
		Listen:   ":8080",
		DataDir:  "./data",
		LogLevel: "info",
		MaxConns: 256,
		RateLimit: RateLimit{
			RequestsPerMinute: 120,
			Window:            time.Minute,
		},
		Cache: Cache{
			Backend: "memory",
			TTL:     15 * time.Minute,
		},
		Telemetry: Telemetry{
			Exporter:   "grpc",
			SampleRate: 0.1,
		},
	}
}

// Load reads the optional YAML file at path, overlays BIODIVINE_*
// environment variables and validates the result. An empty path skips
// the file stage entirely.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path) // #nosec G304 -- path is operator supplied
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first configuration error found.
func (c *Config) Validate() error {
	if c.Listen == "" {
		return fmt.Errorf("listen address must not be empty")
	}
	if c.DataDir == "" {
		return fmt.Errorf("data_dir must not be empty")
	}
	if c.APIToken == "" && !c.AllowAnonymous {
		return fmt.Errorf("api_token is required unless allow_anonymous is set")
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	if c.MaxConns <= 0 {
		return fmt.Errorf("max_conns must be positive, got %d", c.MaxConns)
	}
	if c.RateLimit.RequestsPerMinute <= 0 {
		return fmt.Errorf("rate_limit.requests_per_minute must be positive, got %d", c.RateLimit.RequestsPerMinute)
	}
	switch c.Cache.Backend {
	case "memory", "none":
	case "redis":
		if c.Cache.RedisAddr == "" {
			return fmt.Errorf("cache.redis_addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}
	if c.Telemetry.Enabled {
		switch c.Telemetry.Exporter {
		case "grpc", "http":
			if c.Telemetry.Endpoint == "" {
				return fmt.Errorf("telemetry.endpoint is required for the %s exporter", c.Telemetry.Exporter)
			}
		default:
			return fmt.Errorf("unknown telemetry exporter %q", c.Telemetry.Exporter)
		}
		if c.Telemetry.SampleRate < 0 || c.Telemetry.SampleRate > 1 {
			return fmt.Errorf("telemetry.sample_rate must be within [0,1], got %g", c.Telemetry.SampleRate)
		}
	}
	return nil
}

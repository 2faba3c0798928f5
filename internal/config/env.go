// SPDX-License-Identifier: MIT

package config

import (
	"os"
	"strconv"
	"time"

	"github.com/sybila/biodivine/internal/log"
)

// applyEnv overlays BIODIVINE_* environment variables onto cfg.
// Unset or empty variables leave the existing value untouched;
// unparsable values are logged and skipped.
func applyEnv(cfg *Config) {
	parseString("BIODIVINE_LISTEN", &cfg.Listen)
	parseString("BIODIVINE_DATA_DIR", &cfg.DataDir)
	parseString("BIODIVINE_MODELS_DIR", &cfg.ModelsDir)
	parseString("BIODIVINE_API_TOKEN", &cfg.APIToken)
	parseBool("BIODIVINE_ALLOW_ANONYMOUS", &cfg.AllowAnonymous)
	parseString("BIODIVINE_LOG_LEVEL", &cfg.LogLevel)
	parseInt("BIODIVINE_WORKERS", &cfg.Workers)
	parseInt("BIODIVINE_MAX_CONNS", &cfg.MaxConns)

	parseInt("BIODIVINE_RATE_LIMIT_RPM", &cfg.RateLimit.RequestsPerMinute)
	parseDuration("BIODIVINE_RATE_LIMIT_WINDOW", &cfg.RateLimit.Window)

	parseString("BIODIVINE_CACHE_BACKEND", &cfg.Cache.Backend)
	parseDuration("BIODIVINE_CACHE_TTL", &cfg.Cache.TTL)
	parseString("BIODIVINE_REDIS_ADDR", &cfg.Cache.RedisAddr)
	parseString("BIODIVINE_REDIS_PASSWORD", &cfg.Cache.RedisPassword)
	parseInt("BIODIVINE_REDIS_DB", &cfg.Cache.RedisDB)

	parseBool("BIODIVINE_OTEL_ENABLED", &cfg.Telemetry.Enabled)
	parseString("BIODIVINE_OTEL_EXPORTER", &cfg.Telemetry.Exporter)
	parseString("BIODIVINE_OTEL_ENDPOINT", &cfg.Telemetry.Endpoint)
	parseFloat("BIODIVINE_OTEL_SAMPLE_RATE", &cfg.Telemetry.SampleRate)
}

func parseString(key string, dst *string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func parseInt(key string, dst *int) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		logger := log.WithComponent("config")
		logger.Warn().
			Str("key", key).
			Str("value", v).
			Msg("invalid integer in environment variable, keeping previous value")
		return
	}
	*dst = i
}

func parseBool(key string, dst *bool) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		logger := log.WithComponent("config")
		logger.Warn().
			Str("key", key).
			Str("value", v).
			Msg("invalid boolean in environment variable, keeping previous value")
		return
	}
	*dst = b
}

func parseFloat(key string, dst *float64) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		logger := log.WithComponent("config")
		logger.Warn().
			Str("key", key).
			Str("value", v).
			Msg("invalid float in environment variable, keeping previous value")
		return
	}
	*dst = f
}

func parseDuration(key string, dst *time.Duration) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		logger := log.WithComponent("config")
		logger.Warn().
			Str("key", key).
			Str("value", v).
			Msg("invalid duration in environment variable, keeping previous value")
		return
	}
	*dst = d
}

// Package runconfig loads simulation-run configuration from environment
// variables and flags, following the divinesense profile package's
// FromEnv/Validate shape but scoped to a simulation run's own concerns
// rather than a service's deployment profile.
package runconfig

import (
	"os"
	"strconv"

	"github.com/pkg/errors"
)

// Config holds everything a run needs beyond the component definition
// file itself: termination thresholds, concurrency bound, RNG seed, and
// where to write the execution log.
type Config struct {
	ComponentFile string
	OutputPath    string
	OutputFormat  string // "json" or "csv"

	MaxRounds int
	MaxTime   float64
	MaxEvents int

	MaxWorkers int
	Seed       uint64

	// InputInterval enables recurring input regeneration for an
	// asynchronous run when positive; 0 (the default) leaves it off.
	InputInterval float64

	MetricsAddr string
}

// FromEnv overlays environment variables onto defaults, following the
// teacher's getEnvOrDefault pattern: SIMCORE_<FIELD> wins when set.
func FromEnv() *Config {
	return &Config{
		ComponentFile: getEnvOrDefault("SIMCORE_COMPONENT_FILE", ""),
		OutputPath:    getEnvOrDefault("SIMCORE_OUTPUT_PATH", ""),
		OutputFormat:  getEnvOrDefault("SIMCORE_OUTPUT_FORMAT", "json"),
		MaxRounds:     getEnvOrDefaultInt("SIMCORE_MAX_ROUNDS", 0),
		MaxTime:       getEnvOrDefaultFloat("SIMCORE_MAX_TIME", 0),
		MaxEvents:     getEnvOrDefaultInt("SIMCORE_MAX_EVENTS", 0),
		MaxWorkers:    getEnvOrDefaultInt("SIMCORE_MAX_WORKERS", 4),
		Seed:          uint64(getEnvOrDefaultInt("SIMCORE_SEED", 1)),
		InputInterval: getEnvOrDefaultFloat("SIMCORE_INPUT_INTERVAL", 0),
		MetricsAddr:   getEnvOrDefault("SIMCORE_METRICS_ADDR", ":9090"),
	}
}

// Validate checks that the configuration is internally consistent
// enough to start a run: a component file must be named, at least one
// termination bound must be set, and the worker bound must be positive.
func (c *Config) Validate() error {
	if c.ComponentFile == "" {
		return errors.New("component file is required")
	}
	if c.MaxRounds <= 0 && c.MaxTime <= 0 && c.MaxEvents <= 0 {
		return errors.New("at least one of max-rounds, max-time, or max-events must be set")
	}
	if c.MaxWorkers <= 0 {
		return errors.Errorf("max-workers must be positive, got %d", c.MaxWorkers)
	}
	if c.OutputFormat != "json" && c.OutputFormat != "csv" {
		return errors.Errorf("output format must be json or csv, got %q", c.OutputFormat)
	}
	return nil
}

func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvOrDefaultInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvOrDefaultFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

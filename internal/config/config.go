// Package config loads settings from the environment and bounds presets
// from YAML.
package config

import (
	"os"
	"runtime"
	"strconv"
	"time"
)

// Config holds the settings shared by the command line tool and the
// preview server. Flags override these values.
type Config struct {
	// Preview server
	Port         string
	DBPath       string
	JWTSecret    string // empty disables authentication
	ArtifactsDir string
	RateLimit    int
	RateWindow   time.Duration

	// Rendering
	GPXDir      string
	PresetsFile string
	Workers     int
	SettleDelay time.Duration
}

// Load reads the configuration from the environment
func Load() *Config {
	return &Config{
		Port:         getEnv("PORT", ":8080"),
		DBPath:       getEnv("DB_PATH", "./data/combined-routes.db"),
		JWTSecret:    os.Getenv("JWT_SECRET"),
		ArtifactsDir: getEnv("COMBINED_ROUTES_ARTIFACTS", "."),
		RateLimit:    getEnvInt("COMBINED_ROUTES_RATE_LIMIT", 120),
		RateWindow:   getEnvDuration("COMBINED_ROUTES_RATE_WINDOW", time.Minute),

		GPXDir:      os.Getenv("COMBINED_ROUTES_GPX_DIR"),
		PresetsFile: os.Getenv("COMBINED_ROUTES_PRESETS"),
		Workers:     getEnvInt("COMBINED_ROUTES_WORKERS", runtime.NumCPU()),
		SettleDelay: getEnvDuration("COMBINED_ROUTES_SETTLE", time.Second),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil && v > 0 {
		return v
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil && v > 0 {
		return v
	}
	return fallback
}

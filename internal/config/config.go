// Package config handles runtime settings for the split server:
// defaults overlaid by environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Store backend selectors.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// Config holds runtime settings for the Split Pay server.
type Config struct {
	// Addr is the HTTP bind address.
	Addr string

	// DevMode includes internal error detail in API responses.
	// Never enable in production.
	DevMode bool

	// StoreBackend selects "memory" (default) or "sqlite".
	StoreBackend string

	// DBPath is the SQLite database path, used only with the sqlite
	// backend.
	DBPath string

	// SweepInterval is how often the sweeper runs.
	SweepInterval time.Duration

	// SweepMaxAge is how long terminal splits are retained.
	SweepMaxAge time.Duration
}

// Load builds a Config from defaults overlaid by environment variables:
// ADDR, DEV_MODE, STORE_BACKEND, DB_PATH, SWEEP_INTERVAL, SWEEP_MAX_AGE.
func Load() (*Config, error) {
	cfg := &Config{
		Addr:          ":8080",
		DevMode:       false,
		StoreBackend:  BackendMemory,
		DBPath:        "./data/splits.db",
		SweepInterval: time.Hour,
		SweepMaxAge:   7 * 24 * time.Hour,
	}

	cfg.Addr = getEnv("ADDR", cfg.Addr)
	cfg.DBPath = getEnv("DB_PATH", cfg.DBPath)

	if v := os.Getenv("DEV_MODE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid DEV_MODE %q: %w", v, err)
		}
		cfg.DevMode = b
	}

	backend := getEnv("STORE_BACKEND", cfg.StoreBackend)
	if backend != BackendMemory && backend != BackendSQLite {
		return nil, fmt.Errorf("invalid STORE_BACKEND %q: want %q or %q", backend, BackendMemory, BackendSQLite)
	}
	cfg.StoreBackend = backend

	var err error
	if cfg.SweepInterval, err = durationEnv("SWEEP_INTERVAL", cfg.SweepInterval); err != nil {
		return nil, err
	}
	if cfg.SweepMaxAge, err = durationEnv("SWEEP_MAX_AGE", cfg.SweepMaxAge); err != nil {
		return nil, err
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures environment driven configuration for the reconciler.
type Config struct {
	SQLiteDSN    string
	TimezoneName string
	Timezone     *time.Location
	Interval     time.Duration
	BatchLimit   int
	RunOnce      bool
}

const maxBatchLimit = 400

// Load parses configuration values from the current process environment.
//
// Every value has a default; the loader validates overrides and reports all
// invalid entries at once instead of stopping at the first one. The timezone
// is resolved eagerly so the reconciliation entry point receives an explicit
// *time.Location rather than consulting process state per pass.
func Load() (Config, error) {
	cfg := Config{
		SQLiteDSN:    "file:duty.db?_foreign_keys=on",
		TimezoneName: "America/Lima",
		Interval:     time.Minute,
		BatchLimit:   maxBatchLimit,
	}

	invalid := make([]string, 0, 2)

	if dsn := strings.TrimSpace(os.Getenv("RECONCILER_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if zone := strings.TrimSpace(os.Getenv("RECONCILER_TIMEZONE")); zone != "" {
		cfg.TimezoneName = zone
	}
	location, err := time.LoadLocation(cfg.TimezoneName)
	if err != nil {
		invalid = append(invalid, "RECONCILER_TIMEZONE")
	} else {
		cfg.Timezone = location
	}

	if intervalValue := strings.TrimSpace(os.Getenv("RECONCILER_INTERVAL")); intervalValue != "" {
		interval, err := time.ParseDuration(intervalValue)
		if err != nil || interval <= 0 {
			invalid = append(invalid, "RECONCILER_INTERVAL")
		} else {
			cfg.Interval = interval
		}
	}

	if limitValue := strings.TrimSpace(os.Getenv("RECONCILER_BATCH_LIMIT")); limitValue != "" {
		limit, err := strconv.Atoi(limitValue)
		if err != nil || limit <= 0 || limit > maxBatchLimit {
			invalid = append(invalid, "RECONCILER_BATCH_LIMIT")
		} else {
			cfg.BatchLimit = limit
		}
	}

	if onceValue := strings.TrimSpace(os.Getenv("RECONCILER_ONCE")); onceValue != "" {
		once, err := strconv.ParseBool(onceValue)
		if err != nil {
			invalid = append(invalid, "RECONCILER_ONCE")
		} else {
			cfg.RunOnce = once
		}
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

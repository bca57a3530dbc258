// Package config loads application configuration from the environment.
//
// Everything tunable lives here as an explicitly-loaded struct: the quota
// creation policy, the audit thresholds and the operational timezone are
// plain fields with env-var accessors, not stored configuration rows.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds application configuration.
type Config struct {
	Port         int
	DatabasePath string
	LogLevel     string
	LogPretty    bool

	// Operational timezone for every "today" computation.
	Timezone string

	// Quota creation policy.
	MaxTargetCount int
	MaxWindowDays  int

	// Audit thresholds (formerly a guarded singleton row).
	MinProfilesPerHouse int
	CriticalBalance     decimal.Decimal
	SafetyCapital       decimal.Decimal
	DailyVolumeTarget   decimal.Decimal

	// Cron expression for the operational metrics refresh.
	MetricsSchedule string
}

// Load reads configuration from environment variables, with a .env file as
// optional source.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:         getEnvAsInt("PORT", 8080),
		DatabasePath: getEnv("DATABASE_PATH", "./data/redviva.db"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LogPretty:    getEnvAsBool("LOG_PRETTY", true),

		Timezone: getEnv("OPERATIONAL_TZ", "America/Guayaquil"),

		MaxTargetCount: getEnvAsInt("MAX_TARGET_COUNT", 100),
		MaxWindowDays:  getEnvAsInt("MAX_WINDOW_DAYS", 365),

		MinProfilesPerHouse: getEnvAsInt("MIN_PROFILES_PER_HOUSE", 3),
		CriticalBalance:     getEnvAsDecimal("CRITICAL_BALANCE", "300"),
		SafetyCapital:       getEnvAsDecimal("SAFETY_CAPITAL", "2000"),
		DailyVolumeTarget:   getEnvAsDecimal("DAILY_VOLUME_TARGET", "6000"),

		MetricsSchedule: getEnv("METRICS_SCHEDULE", "@hourly"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required configuration.
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("DATABASE_PATH is required")
	}
	if c.MaxTargetCount <= 0 {
		return fmt.Errorf("MAX_TARGET_COUNT must be positive")
	}
	if c.MaxWindowDays <= 0 || c.MaxWindowDays > 365 {
		return fmt.Errorf("MAX_WINDOW_DAYS must be in 1..365")
	}
	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDecimal(key, defaultValue string) decimal.Decimal {
	if value := os.Getenv(key); value != "" {
		if d, err := decimal.NewFromString(value); err == nil {
			return d
		}
	}
	d, _ := decimal.NewFromString(defaultValue)
	return d
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port         int
	DevMode      bool
	LogLevel     string
	HoldingsPath string
	DatabasePath string

	// Risk analysis parameters
	LookbackDays int
	FetchTimeout time.Duration

	// Projection parameters
	Simulations       int
	HorizonYears      []int
	ExpectedReturnPct float64
}

// DefaultHorizonYears are the projection horizons reported by the
// projection engine, in years.
var DefaultHorizonYears = []int{1, 5, 10, 20, 30}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Port:              getEnvAsInt("PORT", 8090),
		DevMode:           getEnvAsBool("DEV_MODE", false),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		HoldingsPath:      getEnv("HOLDINGS_PATH", "./data/portefeuille.txt"),
		DatabasePath:      getEnv("DATABASE_PATH", "./data/history.db"),
		LookbackDays:      getEnvAsInt("LOOKBACK_DAYS", 252),
		FetchTimeout:      time.Duration(getEnvAsInt("FETCH_TIMEOUT_SECONDS", 30)) * time.Second,
		Simulations:       getEnvAsInt("SIMULATIONS", 1000),
		HorizonYears:      DefaultHorizonYears,
		ExpectedReturnPct: getEnvAsFloat("EXPECTED_RETURN_PCT", 0.0),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.HoldingsPath == "" {
		return fmt.Errorf("HOLDINGS_PATH is required")
	}

	if c.DatabasePath == "" {
		return fmt.Errorf("DATABASE_PATH is required")
	}

	if c.LookbackDays < 2 {
		return fmt.Errorf("LOOKBACK_DAYS must be at least 2, got %d", c.LookbackDays)
	}

	if c.Simulations < 1 {
		return fmt.Errorf("SIMULATIONS must be at least 1, got %d", c.Simulations)
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

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

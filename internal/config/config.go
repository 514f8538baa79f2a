package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir             string  // Directory for the local sqlite database
	BackendURL          string  // Platform backend REST base URL
	BackendWSURL        string  // Platform backend market-data websocket URL
	UserID              string  // Account the terminal submits orders for
	LogLevel            string
	Port                int
	DevMode             bool
	RiskPercent         float64 // Default risk percentage for the risk calculator
	ProbabilityOfProfit float64 // Default win-probability until the backend supplies one
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		DataDir:             getEnv("DATA_DIR", "./data"),
		Port:                getEnvAsInt("PORT", 8080),
		DevMode:             getEnvAsBool("DEV_MODE", false),
		BackendURL:          getEnv("BACKEND_URL", "http://localhost:8000"),
		BackendWSURL:        getEnv("BACKEND_WS_URL", "ws://localhost:8000/ws/market"),
		UserID:              getEnv("USER_ID", ""),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		RiskPercent:         getEnvAsFloat("RISK_PERCENT", 2.0),
		ProbabilityOfProfit: getEnvAsFloat("PROBABILITY_OF_PROFIT", 0.6),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.BackendURL == "" {
		return fmt.Errorf("BACKEND_URL is required")
	}
	if c.RiskPercent <= 0 || c.RiskPercent >= 100 {
		return fmt.Errorf("RISK_PERCENT must be between 0 and 100, got %v", c.RiskPercent)
	}
	if c.ProbabilityOfProfit < 0 || c.ProbabilityOfProfit > 1 {
		return fmt.Errorf("PROBABILITY_OF_PROFIT must be between 0 and 1, got %v", c.ProbabilityOfProfit)
	}
	return nil
}

// DatabasePath returns the path of the local terminal database.
func (c *Config) DatabasePath() string {
	return c.DataDir + "/terminal.db"
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

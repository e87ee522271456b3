package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/warp/payslip-engine/payroll"
)

// Config holds all configuration for the application
type Config struct {
	// Server
	Port        int
	CORSOrigins []string
	Env         string
	LogLevel    zerolog.Level

	// Database
	DatabasePath string

	// Payslips
	Payslip PayslipConfig
}

// PayslipConfig holds the settings the payslip generator runs with
type PayslipConfig struct {
	Currency    string
	Location    *time.Location
	AnchorMode  payroll.AnchorMode
	Concurrency int
	// BatchRatePerMinute limits company payslip runs per client; 0 disables it.
	BatchRatePerMinute int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	port, err := getEnvInt("PORT", 8080)
	if err != nil {
		return nil, err
	}
	concurrency, err := getEnvInt("PAYSLIP_BATCH_CONCURRENCY", payroll.DefaultConcurrency)
	if err != nil {
		return nil, err
	}
	batchRate, err := getEnvInt("PAYSLIP_BATCH_RATE", 30)
	if err != nil {
		return nil, err
	}

	loc, err := time.LoadLocation(getEnv("PAYSLIP_TIMEZONE", "UTC"))
	if err != nil {
		return nil, fmt.Errorf("PAYSLIP_TIMEZONE: %w", err)
	}
	anchor, err := payroll.ParseAnchorMode(getEnv("PAYSLIP_ANCHOR_MODE", ""))
	if err != nil {
		return nil, fmt.Errorf("PAYSLIP_ANCHOR_MODE: %w", err)
	}
	level, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}

	cfg := &Config{
		Port:         port,
		CORSOrigins:  splitList(getEnv("CORS_ORIGINS", "http://localhost:5173,http://localhost:8080")),
		Env:          getEnv("ENV", "development"),
		LogLevel:     level,
		DatabasePath: getEnv("DATABASE_PATH", "payslip.db"),
		Payslip: PayslipConfig{
			Currency:           strings.ToUpper(getEnv("PAYSLIP_CURRENCY", "EUR")),
			Location:           loc,
			AnchorMode:         anchor,
			Concurrency:        concurrency,
			BatchRatePerMinute: batchRate,
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks values that parsed but make no sense.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT %d is out of range", c.Port)
	}
	if c.DatabasePath == "" {
		return fmt.Errorf("DATABASE_PATH is required")
	}
	if len(c.Payslip.Currency) != 3 {
		return fmt.Errorf("PAYSLIP_CURRENCY must be a three-letter code, got %q", c.Payslip.Currency)
	}
	if c.Payslip.Concurrency < 1 {
		return fmt.Errorf("PAYSLIP_BATCH_CONCURRENCY must be at least 1")
	}
	if c.Payslip.BatchRatePerMinute < 0 {
		return fmt.Errorf("PAYSLIP_BATCH_RATE must not be negative")
	}
	return nil
}

// IsProduction reports whether ENV is production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not a number", key, value)
	}
	return n, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the report tool.
type Config struct {
	App     AppConfig
	Logger  LoggerConfig
	Report  ReportConfig
	History HistoryConfig
}

// AppConfig identifies the binary.
type AppConfig struct {
	Name    string
	Version string
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
	// Format is json, console or auto (console when stderr is a terminal).
	Format string
}

// ReportConfig controls how reports are built and where they are written.
type ReportConfig struct {
	OutputDir string
	// LegacyColumnDefaults maps missing required columns to the first column
	// instead of failing the run.
	LegacyColumnDefaults bool
}

// HistoryConfig points at the optional sqlite run history. Empty DBPath disables it.
type HistoryConfig struct {
	DBPath string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		App: AppConfig{
			Name:    getEnv("APP_NAME", "employee-reports"),
			Version: getEnv("APP_VERSION", "dev"),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "auto"),
		},
		Report: ReportConfig{
			OutputDir:            getEnv("REPORT_OUTPUT_DIR", "."),
			LegacyColumnDefaults: getEnvAsBool("REPORT_LEGACY_COLUMN_DEFAULTS", false),
		},
		History: HistoryConfig{
			DBPath: os.Getenv("REPORT_HISTORY_DB"),
		},
	}

	return cfg, nil
}

// Enabled reports whether run history should be recorded.
func (h HistoryConfig) Enabled() bool {
	return h.DBPath != ""
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

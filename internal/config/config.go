package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port string

	// Catalog backend selection
	DataBackend string

	// Flat-file backend
	DataDir string

	// SQLite backend
	SQLiteDBPath string

	// AMQP refresh pipeline
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets backend (sheet names are read by the sheets client
	// itself, following its own env conventions)
	GoogleSpreadsheetID string

	// Collector
	CollectorSourcesFile string
	CollectorDelay       time.Duration
	CollectorTimeout     time.Duration

	// Worker fallback refresh cadence; zero disables it
	RefreshInterval time.Duration

	// Recommendation thresholds
	BaselineRewardRate  float64
	MonthlyRewardTarget float64
}

func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8082"),

		DataBackend: getEnv("DATA_BACKEND", "file"),
		DataDir:     getEnv("DATA_DIR", "./data"),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/cardcompass.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "cardcompass"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "catalog_refresh"),

		GoogleSpreadsheetID: getEnv("GOOGLE_SPREADSHEET_ID", ""),

		CollectorSourcesFile: getEnv("COLLECTOR_SOURCES_FILE", ""),
		CollectorDelay:       getEnvDuration("COLLECTOR_DELAY", 2*time.Second),
		CollectorTimeout:     getEnvDuration("COLLECTOR_TIMEOUT", 30*time.Second),

		RefreshInterval: getEnvDuration("REFRESH_INTERVAL", 24*time.Hour),

		BaselineRewardRate:  getEnvFloat("BASELINE_REWARD_RATE", 1),
		MonthlyRewardTarget: getEnvFloat("MONTHLY_REWARD_TARGET", 50),
	}
}

// Validate checks the configuration and reports every problem at once.
func (c *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	validBackends := []string{"file", "sqlite", "sheets"}
	isValid := false
	for _, b := range validBackends {
		if c.DataBackend == b {
			isValid = true
			break
		}
	}
	if !isValid {
		errs = append(errs, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	if c.DataBackend == "file" && c.DataDir == "" {
		errs = append(errs, "data directory cannot be empty when using file backend")
	}

	if c.DataBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errs = append(errs, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errs = append(errs, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	if c.DataBackend == "sheets" && c.GoogleSpreadsheetID == "" {
		errs = append(errs, "Google Spreadsheet ID is required when using sheets backend")
	}

	if c.AMQPURL != "" {
		if parsed, err := url.Parse(c.AMQPURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsed.Scheme != "amqp" && parsed.Scheme != "amqps" {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsed.Scheme))
		}
		if c.AMQPExchange == "" {
			errs = append(errs, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errs = append(errs, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.CollectorDelay < 0 {
		errs = append(errs, fmt.Sprintf("invalid collector delay %v: must not be negative", c.CollectorDelay))
	}
	if c.CollectorTimeout < time.Second {
		errs = append(errs, fmt.Sprintf("invalid collector timeout %v: must be at least 1 second", c.CollectorTimeout))
	}
	if c.RefreshInterval != 0 && c.RefreshInterval < time.Minute {
		errs = append(errs, fmt.Sprintf("invalid refresh interval %v: must be zero or at least 1 minute", c.RefreshInterval))
	}

	if c.BaselineRewardRate < 0 {
		errs = append(errs, fmt.Sprintf("invalid baseline reward rate %v: must not be negative", c.BaselineRewardRate))
	}
	if c.MonthlyRewardTarget < 0 {
		errs = append(errs, fmt.Sprintf("invalid monthly reward target %v: must not be negative", c.MonthlyRewardTarget))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

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

	// Snapshot backend selection
	SnapshotBackend string
	SQLiteDBPath    string
	DataDir         string

	// AMQP (optional: ledger event publishing for the mirror worker)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets mirror
	GoogleSpreadsheetID string
	GoogleSheetName     string

	// Worker
	MirrorInterval time.Duration
}

func Load() *Config {
	cfg := &Config{
		Port: getEnv("PORT", "8081"),

		SnapshotBackend: getEnv("SNAPSHOT_BACKEND", "file"),
		SQLiteDBPath:    getEnv("SQLITE_DB_PATH", "./data/ebilling.db"),
		DataDir:         getEnv("DATA_DIR", "./data"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "ebilling"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "ledger_events"),

		GoogleSpreadsheetID: getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:     getEnv("GOOGLE_SHEET_NAME", "Ledger"),

		MirrorInterval: getEnvDuration("MIRROR_INTERVAL", 30*time.Second),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	// Validate snapshot backend
	validBackends := []string{"memory", "file", "sqlite"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.SnapshotBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid snapshot backend '%s': must be one of %v", c.SnapshotBackend, validBackends))
	}

	// Validate SQLite configuration if backend is sqlite
	if c.SnapshotBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	// Validate file backend configuration
	if c.SnapshotBackend == "file" && c.DataDir == "" {
		errors = append(errors, "data directory cannot be empty when using file backend")
	}

	// Validate AMQP URL if provided
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}

		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	// Validate mirror worker configuration
	if c.MirrorInterval < time.Second {
		errors = append(errors, fmt.Sprintf("invalid mirror interval %v: must be at least 1 second", c.MirrorInterval))
	} else if c.MirrorInterval > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid mirror interval %v: must be at most 24 hours", c.MirrorInterval))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
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

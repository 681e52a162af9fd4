package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/GaoLiyu/kb-system-back-sub000/constants"
)

// Config holds all application configuration
type Config struct {
	Extract ExtractConfig
	Batch   BatchConfig
	Archive ArchiveConfig
	Export  ExportConfig
	Log     LogConfig
}

// ExtractConfig holds extraction-related configuration
type ExtractConfig struct {
	// ReportType forces a family; empty means detect from the file name.
	ReportType string
	// RulesDir overrides the embedded rule files.
	RulesDir string
}

// BatchConfig holds worker pool configuration
type BatchConfig struct {
	Workers   int
	QueueSize int
	Timeout   time.Duration
}

// ArchiveConfig holds result archive configuration
type ArchiveConfig struct {
	Driver      string
	DSN         string
	MaxConns    int32
	MinConns    int32
	DialTimeout time.Duration
}

// ExportConfig holds export-related configuration
type ExportConfig struct {
	Dir string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string
	Format string
}

// Archive drivers.
const (
	ArchiveNone     = "none"
	ArchiveSQLite   = "sqlite"
	ArchivePostgres = "postgres"
)

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Extract: ExtractConfig{
			ReportType: getEnv("REPORT_TYPE", ""),
			RulesDir:   getEnv("RULES_DIR", ""),
		},
		Batch: BatchConfig{
			Workers:   getEnvAsInt("BATCH_WORKERS", 4),
			QueueSize: getEnvAsInt("BATCH_QUEUE_SIZE", 64),
			Timeout:   getEnvAsDuration("BATCH_TIMEOUT", 2*time.Minute),
		},
		Archive: ArchiveConfig{
			Driver:      strings.ToLower(getEnv("ARCHIVE_DRIVER", ArchiveNone)),
			DSN:         getEnv("ARCHIVE_DSN", ""),
			MaxConns:    getEnvAsInt32("ARCHIVE_MAX_CONNS", 10),
			MinConns:    getEnvAsInt32("ARCHIVE_MIN_CONNS", 1),
			DialTimeout: getEnvAsDuration("ARCHIVE_DIAL_TIMEOUT", 3*time.Second),
		},
		Export: ExportConfig{
			Dir: getEnv("EXPORT_DIR", "./out"),
		},
		Log: LogConfig{
			Level:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
			Format: strings.ToLower(getEnv("LOG_FORMAT", "auto")),
		},
	}
}

// Helper functions for environment variable parsing
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

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Extract.ReportType != "" {
		if _, ok := constants.ParseFamily(c.Extract.ReportType); !ok {
			return NewAppError("CONFIG_ERROR", fmt.Sprintf("REPORT_TYPE %q is not one of %s",
				c.Extract.ReportType, strings.Join(constants.FamiliesAsStrings(), ", ")), ErrInvalidInput)
		}
	}
	if c.Batch.Workers <= 0 {
		return NewAppError("CONFIG_ERROR", "BATCH_WORKERS must be positive", ErrInvalidInput)
	}
	if c.Batch.QueueSize <= 0 {
		return NewAppError("CONFIG_ERROR", "BATCH_QUEUE_SIZE must be positive", ErrInvalidInput)
	}
	switch c.Archive.Driver {
	case ArchiveNone:
	case ArchiveSQLite, ArchivePostgres:
		if c.Archive.DSN == "" {
			return NewAppError("CONFIG_ERROR", "ARCHIVE_DSN is required for driver "+c.Archive.Driver, ErrInvalidInput)
		}
	default:
		return NewAppError("CONFIG_ERROR", fmt.Sprintf("ARCHIVE_DRIVER %q is not supported", c.Archive.Driver), ErrInvalidInput)
	}
	if c.Archive.MinConns > c.Archive.MaxConns {
		return NewAppError("CONFIG_ERROR", "ARCHIVE_MIN_CONNS exceeds ARCHIVE_MAX_CONNS", ErrInvalidInput)
	}
	switch c.Log.Format {
	case "auto", "text", "json":
	default:
		return NewAppError("CONFIG_ERROR", fmt.Sprintf("LOG_FORMAT %q is not supported", c.Log.Format), ErrInvalidInput)
	}
	return nil
}

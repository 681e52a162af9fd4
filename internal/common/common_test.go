package common

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, k := range []string{"REPORT_TYPE", "BATCH_WORKERS", "BATCH_QUEUE_SIZE", "BATCH_TIMEOUT", "ARCHIVE_DRIVER", "ARCHIVE_DSN", "LOG_FORMAT"} {
		t.Setenv(k, "")
	}
	cfg := LoadConfig()
	if cfg.Batch.Workers != 4 || cfg.Batch.QueueSize != 64 || cfg.Batch.Timeout != 2*time.Minute {
		t.Fatalf("unexpected batch defaults: %+v", cfg.Batch)
	}
	if cfg.Archive.Driver != ArchiveNone {
		t.Fatalf("archive driver = %q", cfg.Archive.Driver)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("REPORT_TYPE", "zujin")
	t.Setenv("BATCH_WORKERS", "8")
	t.Setenv("BATCH_TIMEOUT", "30s")
	t.Setenv("ARCHIVE_DRIVER", "SQLite")
	t.Setenv("ARCHIVE_DSN", "file:test.db")
	cfg := LoadConfig()
	if cfg.Extract.ReportType != "zujin" || cfg.Batch.Workers != 8 || cfg.Batch.Timeout != 30*time.Second {
		t.Fatalf("env not applied: %+v", cfg)
	}
	if cfg.Archive.Driver != ArchiveSQLite {
		t.Fatalf("driver should be lower-cased, got %q", cfg.Archive.Driver)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Batch:   BatchConfig{Workers: 1, QueueSize: 1},
			Archive: ArchiveConfig{Driver: ArchiveNone, MaxConns: 2, MinConns: 1},
			Log:     LogConfig{Format: "auto"},
		}
	}
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"bad report type", func(c *Config) { c.Extract.ReportType = "unknown" }},
		{"zero workers", func(c *Config) { c.Batch.Workers = 0 }},
		{"zero queue", func(c *Config) { c.Batch.QueueSize = 0 }},
		{"sqlite without dsn", func(c *Config) { c.Archive.Driver = ArchiveSQLite }},
		{"unknown driver", func(c *Config) { c.Archive.Driver = "mysql" }},
		{"min above max", func(c *Config) { c.Archive.MinConns = 5 }},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(c)
			err := c.Validate()
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("want ErrInvalidInput, got %v", err)
			}
			if ErrorCode(err) != "CONFIG_ERROR" {
				t.Fatalf("code = %q", ErrorCode(err))
			}
		})
	}
}

func TestUnsupportedReportError(t *testing.T) {
	err := UnsupportedReportError("foo")
	if !errors.Is(err, ErrUnsupportedReport) {
		t.Fatal("should wrap ErrUnsupportedReport")
	}
	if ErrorCode(WrapError(err, "dispatch")) != "UNSUPPORTED_REPORT" {
		t.Fatal("code should survive wrapping")
	}
	if !strings.Contains(err.Error(), `"foo"`) {
		t.Fatalf("message = %q", err.Error())
	}
	if WrapError(nil, "x") != nil {
		t.Fatal("WrapError(nil) should be nil")
	}
}

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{Level: "debug", Format: "auto"}, &buf)
	logger.Debug("extract.classify", "table_index", 3)
	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("non-terminal writer should get JSON: %v (%s)", err, buf.String())
	}
	if rec["msg"] != "extract.classify" || rec["table_index"] != float64(3) {
		t.Fatalf("record = %v", rec)
	}
}

func TestNewLoggerTextStripsTimeAndLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{Format: "text"}, &buf)
	logger.Info("batch.file.ok", "file", "a.json")
	out := buf.String()
	if strings.Contains(out, "time=") || strings.Contains(out, "level=") {
		t.Fatalf("time/level should be stripped: %q", out)
	}
	if !strings.Contains(out, "msg=batch.file.ok") {
		t.Fatalf("out = %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	if ParseLevel("warn") != slog.LevelWarn || ParseLevel("nonsense") != slog.LevelInfo {
		t.Fatal("level mapping")
	}
}

func TestContextValues(t *testing.T) {
	ctx := WithRunID(context.Background(), "run-1")
	if RunIDFromContext(ctx) != "run-1" {
		t.Fatal("run id")
	}
	if RunIDFromContext(context.Background()) != "" {
		t.Fatal("empty run id expected")
	}
	l := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	if LoggerFromContext(WithLogger(ctx, l), nil) != l {
		t.Fatal("stored logger")
	}
	if LoggerFromContext(ctx, l) != l {
		t.Fatal("fallback logger")
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CONFIG_FILE", "SERVER_HOST", "SERVER_PORT", "SERVER_READ_TIMEOUT",
		"SERVER_WRITE_TIMEOUT", "SERVER_IDLE_TIMEOUT", "SERVER_SHUTDOWN_TIMEOUT",
		"CSV_FILE", "CACHE_DIR", "LOG_LEVEL", "LOG_FORMAT",
		"SECURITY_RATE_LIMIT_ENABLED", "SECURITY_RATE_LIMIT_RPS",
		"SECURITY_RATE_LIMIT_BURST", "SECURITY_ALLOWED_ORIGINS",
		"SECURITY_TRUSTED_PROXIES",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Address() != "127.0.0.1:8050" {
		t.Errorf("Address() = %q, want 127.0.0.1:8050", cfg.Address())
	}
	if cfg.Dataset.CSVFile != "data/swiftshop_sales_data.csv" {
		t.Errorf("CSVFile = %q", cfg.Dataset.CSVFile)
	}
	if cfg.Dataset.CacheDir != "" {
		t.Errorf("CacheDir should default to disabled, got %q", cfg.Dataset.CacheDir)
	}
	if cfg.Logger.Level != "info" || cfg.Logger.Format != "json" {
		t.Errorf("logger defaults = %s/%s", cfg.Logger.Level, cfg.Logger.Format)
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearConfigEnv(t)

	path := filepath.Join(t.TempDir(), "dashboard.yaml")
	yamlBody := `
server:
  host: 0.0.0.0
  port: 8100
  read_timeout: 5s
dataset:
  csv_file: /srv/sales.csv
  cache_dir: /tmp/swiftshop-cache
logger:
  level: debug
`
	if err := os.WriteFile(path, []byte(yamlBody), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("CONFIG_FILE", path)
	// Environment wins over the file.
	t.Setenv("SERVER_PORT", "9000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Host = %q, want file value 0.0.0.0", cfg.Server.Host)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("Port = %d, want env override 9000", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 5*time.Second {
		t.Errorf("ReadTimeout = %v, want 5s", cfg.Server.ReadTimeout)
	}
	// Keys absent from the file keep their defaults.
	if cfg.Server.WriteTimeout != 30*time.Second {
		t.Errorf("WriteTimeout = %v, want default 30s", cfg.Server.WriteTimeout)
	}
	if cfg.Dataset.CSVFile != "/srv/sales.csv" {
		t.Errorf("CSVFile = %q", cfg.Dataset.CSVFile)
	}
	if cfg.Dataset.CacheDir != "/tmp/swiftshop-cache" {
		t.Errorf("CacheDir = %q", cfg.Dataset.CacheDir)
	}
	if cfg.Logger.Level != "debug" {
		t.Errorf("Level = %q, want debug", cfg.Logger.Level)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		yaml string
	}{
		{
			name: "bad port",
			env:  map[string]string{"SERVER_PORT": "70000"},
		},
		{
			name: "bad log level",
			env:  map[string]string{"LOG_LEVEL": "loud"},
		},
		{
			name: "missing config file",
			env:  map[string]string{"CONFIG_FILE": "/nonexistent/dashboard.yaml"},
		},
		{
			name: "bad duration in file",
			yaml: "server:\n  read_timeout: soon\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearConfigEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if tt.yaml != "" {
				path := filepath.Join(t.TempDir(), "dashboard.yaml")
				if err := os.WriteFile(path, []byte(tt.yaml), 0644); err != nil {
					t.Fatal(err)
				}
				t.Setenv("CONFIG_FILE", path)
			}

			if _, err := Load(); err == nil {
				t.Error("Load() should have failed")
			}
		})
	}
}

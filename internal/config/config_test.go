package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var configKeys = []string{
	"PORT", "DB_PATH", "JWT_SECRET", "TOKEN_TTL", "REDIS_URL",
	"CACHE_TTL", "LOG_LEVEL", "LOG_FORMAT", "SHUTDOWN_TIMEOUT",
}

// clearEnv blanks every config variable for the duration of the test.
// An empty value counts as unset, and godotenv never overrides a variable
// that is present in the environment.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("JWT_SECRET", "0123456789abcdef")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != 8080 {
		t.Errorf("Port: expected 8080, got %d", cfg.Port)
	}
	if cfg.Addr() != ":8080" {
		t.Errorf("Addr: expected :8080, got %s", cfg.Addr())
	}
	if cfg.DBPath != "./data/ledger.db" {
		t.Errorf("DBPath: got %s", cfg.DBPath)
	}
	if cfg.TokenTTL != 24*time.Hour {
		t.Errorf("TokenTTL: got %v", cfg.TokenTTL)
	}
	if cfg.CacheTTL != 10*time.Minute {
		t.Errorf("CacheTTL: got %v", cfg.CacheTTL)
	}
	if cfg.RedisURL != "" {
		t.Errorf("RedisURL: expected empty, got %s", cfg.RedisURL)
	}
	if cfg.LogLevel != "info" || cfg.LogFormat != "text" {
		t.Errorf("logging: got level=%s format=%s", cfg.LogLevel, cfg.LogFormat)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Errorf("ShutdownTimeout: got %v", cfg.ShutdownTimeout)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "9090")
	t.Setenv("DB_PATH", "/tmp/x.db")
	t.Setenv("JWT_SECRET", "a-long-enough-secret")
	t.Setenv("TOKEN_TTL", "1h")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("CACHE_TTL", "30s")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != 9090 || cfg.DBPath != "/tmp/x.db" {
		t.Errorf("got port=%d db=%s", cfg.Port, cfg.DBPath)
	}
	if cfg.TokenTTL != time.Hour || cfg.CacheTTL != 30*time.Second {
		t.Errorf("got token_ttl=%v cache_ttl=%v", cfg.TokenTTL, cfg.CacheTTL)
	}
	if cfg.RedisURL != "redis://localhost:6379/0" {
		t.Errorf("RedisURL: got %s", cfg.RedisURL)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("LogFormat: got %s", cfg.LogFormat)
	}
}

func TestLoad_DotEnvFile(t *testing.T) {
	clearEnv(t)
	// godotenv only fills variables that are absent, so unset the blanks again
	for _, k := range configKeys {
		os.Unsetenv(k)
	}

	path := filepath.Join(t.TempDir(), "test.env")
	content := "JWT_SECRET=from-dotenv-file-123\nPORT=7070\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write env file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.JWTSecret != "from-dotenv-file-123" {
		t.Errorf("JWTSecret: got %q", cfg.JWTSecret)
	}
	if cfg.Port != 7070 {
		t.Errorf("Port: got %d", cfg.Port)
	}
}

func TestLoad_MissingEnvFile(t *testing.T) {
	clearEnv(t)
	if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err == nil {
		t.Fatal("expected error for a missing .env file")
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"missing secret", map[string]string{}, "JWT_SECRET"},
		{"short secret", map[string]string{"JWT_SECRET": "short"}, "JWT_SECRET"},
		{"bad port", map[string]string{"JWT_SECRET": "0123456789abcdef", "PORT": "eighty"}, "PORT"},
		{"port out of range", map[string]string{"JWT_SECRET": "0123456789abcdef", "PORT": "70000"}, "PORT"},
		{"bad duration", map[string]string{"JWT_SECRET": "0123456789abcdef", "CACHE_TTL": "10"}, "CACHE_TTL"},
		{"bad log format", map[string]string{"JWT_SECRET": "0123456789abcdef", "LOG_FORMAT": "xml"}, "LOG_FORMAT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Chdir(t.TempDir())
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error mentioning %s, got: %v", tt.wantErr, err)
			}
		})
	}
}

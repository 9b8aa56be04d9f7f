package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Success(t *testing.T) {
	setMinimalEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.App.Env != "production" {
		t.Fatalf("expected App.Env to be production, got %q", cfg.App.Env)
	}

	if cfg.Sheets.SpreadsheetID != "sheet-123" {
		t.Fatalf("unexpected spreadsheet id: %q", cfg.Sheets.SpreadsheetID)
	}

	if cfg.Sheets.ProductsRange != "Products!A2:K" {
		t.Fatalf("unexpected default products range: %q", cfg.Sheets.ProductsRange)
	}

	if cfg.Redis.URL != "redis://localhost:6379/0" {
		t.Fatalf("unexpected Redis URL: %q", cfg.Redis.URL)
	}

	if got := cfg.Sync.PollInterval; got != 30*time.Second {
		t.Fatalf("expected default poll interval 30s, got %v", got)
	}

	if !cfg.Script.Confirmed {
		t.Fatal("expected confirmed write mode by default")
	}

	if got := cfg.JWT.SessionTTL(); got != 12*time.Hour {
		t.Fatalf("expected default session ttl 12h, got %v", got)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	setMinimalEnv(t)
	if err := os.Unsetenv(EnvAppEnv); err != nil {
		t.Fatalf("failed to unset %s: %v", EnvAppEnv, err)
	}

	if _, err := Load(); err == nil {
		t.Fatal("expected missing required env to return an error")
	}
}

func TestAppConfigEnvChecks(t *testing.T) {
	dev := AppConfig{Env: "Development"}
	if !dev.IsDev() || dev.IsProd() {
		t.Fatal("expected development env detection to be case-insensitive")
	}
	prod := AppConfig{Env: "PRODUCTION"}
	if !prod.IsProd() || prod.IsDev() {
		t.Fatal("expected production env detection to be case-insensitive")
	}
}

func setMinimalEnv(t *testing.T) {
	t.Helper()

	t.Setenv(EnvAppEnv, "production")
	t.Setenv(EnvPort, "8081")
	t.Setenv(EnvSpreadsheetID, "sheet-123")
	t.Setenv(EnvRedisURL, "redis://localhost:6379/0")
	t.Setenv(EnvJWTSecret, "secret")
	t.Setenv(EnvJWTIssuer, "wardstock")
}

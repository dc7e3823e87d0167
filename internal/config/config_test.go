package config

import (
	"strings"
	"testing"
	"time"
)

func setRequiredEnvVars(t *testing.T) {
	t.Helper()
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
	t.Setenv("SESSION_SECRET", "test-session-secret-32bytes-long!")
	t.Setenv("BASE_URL", "http://localhost:8080")
}

func TestLoad_AllRequiredVarsSet_ReturnsConfig(t *testing.T) {
	setRequiredEnvVars(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.MongoURI != "mongodb://localhost:27017" {
		t.Errorf("MongoURI = %q, want %q", cfg.MongoURI, "mongodb://localhost:27017")
	}
	if cfg.SessionSecret != "test-session-secret-32bytes-long!" {
		t.Errorf("SessionSecret = %q, want %q", cfg.SessionSecret, "test-session-secret-32bytes-long!")
	}
	if cfg.BaseURL != "http://localhost:8080" {
		t.Errorf("BaseURL = %q, want %q", cfg.BaseURL, "http://localhost:8080")
	}
}

func TestLoad_DefaultValues(t *testing.T) {
	setRequiredEnvVars(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	// MongoDB defaults
	if cfg.MongoDatabase != "aliendex" {
		t.Errorf("MongoDatabase = %q, want %q", cfg.MongoDatabase, "aliendex")
	}
	if cfg.MongoTimeout != 10*time.Second {
		t.Errorf("MongoTimeout = %v, want %v", cfg.MongoTimeout, 10*time.Second)
	}
	if cfg.MongoConnectAttempts != 5 {
		t.Errorf("MongoConnectAttempts = %d, want %d", cfg.MongoConnectAttempts, 5)
	}

	// Session defaults
	if cfg.SessionMaxAge != 86400 {
		t.Errorf("SessionMaxAge = %d, want %d", cfg.SessionMaxAge, 86400)
	}
	if cfg.SessionCleanupInterval != time.Hour {
		t.Errorf("SessionCleanupInterval = %v, want %v", cfg.SessionCleanupInterval, time.Hour)
	}

	// Rate limit defaults
	if cfg.RateLimitGeneral != 120 {
		t.Errorf("RateLimitGeneral = %d, want %d", cfg.RateLimitGeneral, 120)
	}
	if cfg.RateLimitWrite != 30 {
		t.Errorf("RateLimitWrite = %d, want %d", cfg.RateLimitWrite, 30)
	}

	if cfg.SeedEnabled {
		t.Error("SeedEnabled should default to false")
	}
	if !cfg.CSRFEnabled {
		t.Error("CSRFEnabled should default to true")
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}

	// Server defaults
	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q, want %q", cfg.ServerPort, "8080")
	}
	if cfg.CookieSecure {
		t.Error("CookieSecure should be false for http BASE_URL")
	}
	if cfg.CORSAllowedOrigin != "" {
		t.Errorf("CORSAllowedOrigin = %q, want empty", cfg.CORSAllowedOrigin)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	setRequiredEnvVars(t)

	t.Setenv("MONGODB_DATABASE", "aliendex_test")
	t.Setenv("MONGODB_TIMEOUT", "3s")
	t.Setenv("MONGODB_CONNECT_ATTEMPTS", "2")
	t.Setenv("SESSION_MAX_AGE", "3600")
	t.Setenv("SESSION_CLEANUP_INTERVAL", "15m")
	t.Setenv("RATE_LIMIT_GENERAL", "60")
	t.Setenv("RATE_LIMIT_WRITE", "5")
	t.Setenv("SEED_ENABLED", "true")
	t.Setenv("CSRF_ENABLED", "false")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SERVER_PORT", "3000")
	t.Setenv("COOKIE_DOMAIN", "example.com")
	t.Setenv("CORS_ALLOWED_ORIGIN", "https://app.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.MongoDatabase != "aliendex_test" {
		t.Errorf("MongoDatabase = %q, want %q", cfg.MongoDatabase, "aliendex_test")
	}
	if cfg.MongoTimeout != 3*time.Second {
		t.Errorf("MongoTimeout = %v, want %v", cfg.MongoTimeout, 3*time.Second)
	}
	if cfg.MongoConnectAttempts != 2 {
		t.Errorf("MongoConnectAttempts = %d, want %d", cfg.MongoConnectAttempts, 2)
	}
	if cfg.SessionMaxAge != 3600 {
		t.Errorf("SessionMaxAge = %d, want %d", cfg.SessionMaxAge, 3600)
	}
	if cfg.SessionCleanupInterval != 15*time.Minute {
		t.Errorf("SessionCleanupInterval = %v, want %v", cfg.SessionCleanupInterval, 15*time.Minute)
	}
	if cfg.RateLimitGeneral != 60 {
		t.Errorf("RateLimitGeneral = %d, want %d", cfg.RateLimitGeneral, 60)
	}
	if cfg.RateLimitWrite != 5 {
		t.Errorf("RateLimitWrite = %d, want %d", cfg.RateLimitWrite, 5)
	}
	if !cfg.SeedEnabled {
		t.Error("SeedEnabled = false, want true")
	}
	if cfg.CSRFEnabled {
		t.Error("CSRFEnabled = true, want false")
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "debug")
	}
	if cfg.ServerPort != "3000" {
		t.Errorf("ServerPort = %q, want %q", cfg.ServerPort, "3000")
	}
	if cfg.CookieDomain != "example.com" {
		t.Errorf("CookieDomain = %q, want %q", cfg.CookieDomain, "example.com")
	}
	if cfg.CORSAllowedOrigin != "https://app.example.com" {
		t.Errorf("CORSAllowedOrigin = %q, want %q", cfg.CORSAllowedOrigin, "https://app.example.com")
	}
}

func TestLoad_HTTPSBaseURL_SecureCookie(t *testing.T) {
	setRequiredEnvVars(t)
	t.Setenv("BASE_URL", "https://aliendex.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !cfg.CookieSecure {
		t.Error("CookieSecure should be true for https BASE_URL")
	}
}

// 不正な値はデフォルトにフォールバックする
func TestLoad_InvalidValues_FallBackToDefaults(t *testing.T) {
	setRequiredEnvVars(t)
	t.Setenv("SESSION_MAX_AGE", "forever")
	t.Setenv("MONGODB_TIMEOUT", "ten")
	t.Setenv("SEED_ENABLED", "maybe")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.SessionMaxAge != 86400 {
		t.Errorf("SessionMaxAge = %d, want default", cfg.SessionMaxAge)
	}
	if cfg.MongoTimeout != 10*time.Second {
		t.Errorf("MongoTimeout = %v, want default", cfg.MongoTimeout)
	}
	if cfg.SeedEnabled {
		t.Error("SeedEnabled should fall back to false")
	}
}

// 0以下の間隔はデフォルトにフォールバックする
func TestLoad_NonPositiveDurations_FallBackToDefaults(t *testing.T) {
	for _, v := range []string{"0s", "-1m"} {
		t.Run(v, func(t *testing.T) {
			setRequiredEnvVars(t)
			t.Setenv("SESSION_CLEANUP_INTERVAL", v)
			t.Setenv("MONGODB_TIMEOUT", v)

			cfg, err := Load()
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if cfg.SessionCleanupInterval != time.Hour {
				t.Errorf("SessionCleanupInterval = %v, want %v", cfg.SessionCleanupInterval, time.Hour)
			}
			if cfg.MongoTimeout != 10*time.Second {
				t.Errorf("MongoTimeout = %v, want default", cfg.MongoTimeout)
			}
		})
	}
}

func TestLoad_MissingRequiredVars_ReturnsError(t *testing.T) {
	for _, key := range []string{"MONGODB_URI", "SESSION_SECRET", "BASE_URL"} {
		t.Run(key, func(t *testing.T) {
			setRequiredEnvVars(t)
			t.Setenv(key, "")

			_, err := Load()
			if err == nil {
				t.Fatalf("expected error for missing %s, got nil", key)
			}
			if !strings.Contains(err.Error(), key) {
				t.Errorf("error %q should name %s", err.Error(), key)
			}
		})
	}
}

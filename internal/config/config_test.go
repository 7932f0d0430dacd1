package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("REFUNDS_PER_WINDOW", "")
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.AvailabilityTTL != 30*time.Second {
		t.Fatalf("expected default availability ttl, got %s", cfg.AvailabilityTTL)
	}
	if cfg.RefundsPerWindow != 3 {
		t.Fatalf("expected default refund limit, got %d", cfg.RefundsPerWindow)
	}
	if cfg.CORSAllowedOrigins != nil {
		t.Fatalf("expected no CORS origins by default, got %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("DATABASE_URL", "postgres://user@host/db")
	t.Setenv("AVAILABILITY_CACHE_TTL", "45s")
	t.Setenv("REFUNDS_PER_WINDOW", "5")
	t.Setenv("REFUND_WINDOW", "12h")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.example.com, https://admin.example.com")
	t.Setenv("EMAIL_PROVIDER", "sendgrid")
	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected override port, got %s", cfg.Port)
	}
	if cfg.DatabaseURL != "postgres://user@host/db" {
		t.Fatalf("expected database url override, got %s", cfg.DatabaseURL)
	}
	if cfg.AvailabilityTTL != 45*time.Second {
		t.Fatalf("expected ttl override, got %s", cfg.AvailabilityTTL)
	}
	if cfg.RefundsPerWindow != 5 {
		t.Fatalf("expected refund limit override, got %d", cfg.RefundsPerWindow)
	}
	if cfg.RefundWindow != 12*time.Hour {
		t.Fatalf("expected refund window override, got %s", cfg.RefundWindow)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://admin.example.com" {
		t.Fatalf("unexpected CORS origins: %v", cfg.CORSAllowedOrigins)
	}
	if cfg.EmailProvider != "sendgrid" {
		t.Fatalf("expected email provider override, got %s", cfg.EmailProvider)
	}
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("REFUNDS_PER_WINDOW", "lots")
	t.Setenv("REDIS_TLS", "maybe")
	t.Setenv("AVAILABILITY_CACHE_TTL", "soon")
	cfg := Load()
	if cfg.RefundsPerWindow != 3 {
		t.Fatalf("expected malformed int to fall back to default, got %d", cfg.RefundsPerWindow)
	}
	if cfg.RedisTLS {
		t.Fatalf("expected malformed bool to fall back to default")
	}
	if cfg.AvailabilityTTL != 30*time.Second {
		t.Fatalf("expected malformed duration to fall back to default, got %s", cfg.AvailabilityTTL)
	}
}

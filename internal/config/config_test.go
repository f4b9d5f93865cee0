package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "JWT_SECRET", "JWT_ACCESS_TTL", "JWT_REFRESH_TTL",
		"SMTP_PORT", "EMAILS_FROM_NAME", "PGSSLMODE",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.App.Port != "8080" {
		t.Fatalf("default port = %q", cfg.App.Port)
	}
	if cfg.Auth.JWTAccessTTL != "30m" || cfg.Auth.JWTRefreshTTL != "168h" {
		t.Fatalf("default TTLs = %q/%q", cfg.Auth.JWTAccessTTL, cfg.Auth.JWTRefreshTTL)
	}
	if cfg.Auth.JWTSecret != "" {
		t.Fatalf("secret must have no default")
	}
	if cfg.SMTP.Port != "587" || cfg.SMTP.FromName != "ScamShield" {
		t.Fatalf("smtp defaults = %q/%q", cfg.SMTP.Port, cfg.SMTP.FromName)
	}
	if cfg.Postgres.SSLMode != "disable" {
		t.Fatalf("default sslmode = %q", cfg.Postgres.SSLMode)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("JWT_ACCESS_TTL", "15m")
	t.Setenv("CORS_ORIGINS", "https://a.example.com,https://b.example.com")

	cfg := Load()
	if cfg.App.Port != "9090" {
		t.Fatalf("port = %q", cfg.App.Port)
	}
	if cfg.Auth.JWTSecret != "s3cret" || cfg.Auth.JWTAccessTTL != "15m" {
		t.Fatalf("auth config = %+v", cfg.Auth)
	}
	if cfg.App.CORSOrigins != "https://a.example.com,https://b.example.com" {
		t.Fatalf("cors = %q", cfg.App.CORSOrigins)
	}
}

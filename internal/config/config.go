package config

import "os"

type Config struct {
	App      AppConfig
	Postgres PostgresConfig
	Auth     AuthConfig
	OAuth    OAuthConfig
	SMTP     SMTPConfig
}

type AppConfig struct {
	Port        string
	FrontendURL string
	CORSOrigins string
}

type PostgresConfig struct {
	DatabaseURL string
	Host        string
	Port        string
	User        string
	Password    string
	Database    string
	SSLMode     string
}

type AuthConfig struct {
	JWTSecret     string
	JWTAccessTTL  string
	JWTRefreshTTL string
}

type OAuthConfig struct {
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURI  string
	GitHubClientID     string
	GitHubClientSecret string
	GitHubRedirectURI  string
}

type SMTPConfig struct {
	Host      string
	Port      string
	User      string
	Password  string
	FromEmail string
	FromName  string
}

func Load() Config {
	return Config{
		App: AppConfig{
			Port:        getenv("PORT", "8080"),
			FrontendURL: getenv("FRONTEND_URL", "http://localhost:5500"),
			CORSOrigins: os.Getenv("CORS_ORIGINS"),
		},
		Postgres: PostgresConfig{
			DatabaseURL: os.Getenv("DATABASE_URL"),
			Host:        getenv("PGHOST", "localhost"),
			Port:        getenv("PGPORT", "5432"),
			User:        os.Getenv("PGUSER"),
			Password:    os.Getenv("PGPASSWORD"),
			Database:    os.Getenv("PGDATABASE"),
			SSLMode:     getenv("PGSSLMODE", "disable"),
		},
		Auth: AuthConfig{
			JWTSecret:     os.Getenv("JWT_SECRET"),
			JWTAccessTTL:  getenv("JWT_ACCESS_TTL", "30m"),
			JWTRefreshTTL: getenv("JWT_REFRESH_TTL", "168h"),
		},
		OAuth: OAuthConfig{
			GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
			GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
			GoogleRedirectURI:  os.Getenv("GOOGLE_REDIRECT_URI"),
			GitHubClientID:     os.Getenv("GITHUB_CLIENT_ID"),
			GitHubClientSecret: os.Getenv("GITHUB_CLIENT_SECRET"),
			GitHubRedirectURI:  os.Getenv("GITHUB_REDIRECT_URI"),
		},
		SMTP: SMTPConfig{
			Host:      os.Getenv("SMTP_HOST"),
			Port:      getenv("SMTP_PORT", "587"),
			User:      os.Getenv("SMTP_USER"),
			Password:  os.Getenv("SMTP_PASSWORD"),
			FromEmail: getenv("EMAILS_FROM_EMAIL", "noreply@scamshield.com"),
			FromName:  getenv("EMAILS_FROM_NAME", "ScamShield"),
		},
	}
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

package service

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/niu-24-19333-stack/ScamShield/internal/config"
)

func testCodec(t *testing.T) *TokenCodec {
	t.Helper()
	codec, err := NewTokenCodec(config.AuthConfig{
		JWTSecret:     "test-secret",
		JWTAccessTTL:  "30m",
		JWTRefreshTTL: "168h",
	})
	if err != nil {
		t.Fatalf("NewTokenCodec error: %v", err)
	}
	return codec
}

func TestNewTokenCodecValidation(t *testing.T) {
	cases := []config.AuthConfig{
		{JWTSecret: "", JWTAccessTTL: "30m", JWTRefreshTTL: "168h"},
		{JWTSecret: "s", JWTAccessTTL: "", JWTRefreshTTL: "168h"},
		{JWTSecret: "s", JWTAccessTTL: "30m", JWTRefreshTTL: "bogus"},
		{JWTSecret: "s", JWTAccessTTL: "-1m", JWTRefreshTTL: "168h"},
	}
	for _, cfg := range cases {
		if _, err := NewTokenCodec(cfg); !errors.Is(err, ErrMisconfigured) {
			t.Fatalf("config %+v: expected ErrMisconfigured, got %v", cfg, err)
		}
	}
}

func TestIssuePairRoundtrip(t *testing.T) {
	codec := testCodec(t)

	pair, err := codec.IssuePair("user-1")
	if err != nil {
		t.Fatalf("IssuePair error: %v", err)
	}
	if pair.TokenType != "bearer" {
		t.Fatalf("token_type = %q, want bearer", pair.TokenType)
	}
	if pair.ExpiresIn != 1800 {
		t.Fatalf("expires_in = %d, want 1800", pair.ExpiresIn)
	}

	access, err := codec.Decode(pair.AccessToken)
	if err != nil {
		t.Fatalf("Decode access error: %v", err)
	}
	if access.Subject != "user-1" || access.TokenType != TokenAccess {
		t.Fatalf("access claims = %q/%q", access.Subject, access.TokenType)
	}

	refresh, err := codec.Decode(pair.RefreshToken)
	if err != nil {
		t.Fatalf("Decode refresh error: %v", err)
	}
	if refresh.Subject != "user-1" || refresh.TokenType != TokenRefresh {
		t.Fatalf("refresh claims = %q/%q", refresh.Subject, refresh.TokenType)
	}
	if !refresh.ExpiresAt.After(access.ExpiresAt.Time) {
		t.Fatalf("refresh token must outlive access token")
	}
}

func TestDecodeExpired(t *testing.T) {
	codec := testCodec(t)

	tok, err := codec.Issue("user-1", TokenAccess, -time.Minute)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	if _, err := codec.Decode(tok); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestDecodeTampered(t *testing.T) {
	codec := testCodec(t)

	tok, err := codec.Issue("user-1", TokenAccess, time.Minute)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	parts := strings.Split(tok, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token shape: %q", tok)
	}
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]
	if _, err := codec.Decode(tampered); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for tampered payload, got %v", err)
	}

	if _, err := codec.Decode("not.a.jwt"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for garbage, got %v", err)
	}
}

func TestDecodeWrongSecret(t *testing.T) {
	codec := testCodec(t)
	other, err := NewTokenCodec(config.AuthConfig{
		JWTSecret:     "different-secret",
		JWTAccessTTL:  "30m",
		JWTRefreshTTL: "168h",
	})
	if err != nil {
		t.Fatalf("NewTokenCodec error: %v", err)
	}

	tok, err := other.Issue("user-1", TokenAccess, time.Minute)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	if _, err := codec.Decode(tok); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for foreign signature, got %v", err)
	}
}

func TestExpiryOfExpiredToken(t *testing.T) {
	codec := testCodec(t)

	tok, err := codec.Issue("user-1", TokenRefresh, -time.Hour)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	exp, err := codec.ExpiryOf(tok)
	if err != nil {
		t.Fatalf("ExpiryOf error: %v", err)
	}
	if !exp.Before(time.Now()) {
		t.Fatalf("expected past expiry, got %v", exp)
	}

	if _, err := codec.ExpiryOf("garbage"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

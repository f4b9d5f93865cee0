package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/niu-24-19333-stack/ScamShield/internal/config"
	"github.com/niu-24-19333-stack/ScamShield/internal/model"
)

type TokenType string

const (
	TokenAccess  TokenType = "access"
	TokenRefresh TokenType = "refresh"
)

type TokenClaims struct {
	TokenType TokenType `json:"type"`
	jwt.RegisteredClaims
}

// TokenCodec signs and verifies the access/refresh token pair. The secret is
// loaded once at construction and never mutated, so a test can run its own
// codec and operators can rotate the secret with a restart.
type TokenCodec struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewTokenCodec(cfg config.AuthConfig) (*TokenCodec, error) {
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("%w: JWT_SECRET is required", ErrMisconfigured)
	}

	accessTTL, err := time.ParseDuration(cfg.JWTAccessTTL)
	if err != nil || accessTTL <= 0 {
		return nil, fmt.Errorf("%w: invalid JWT_ACCESS_TTL", ErrMisconfigured)
	}

	refreshTTL, err := time.ParseDuration(cfg.JWTRefreshTTL)
	if err != nil || refreshTTL <= 0 {
		return nil, fmt.Errorf("%w: invalid JWT_REFRESH_TTL", ErrMisconfigured)
	}

	return &TokenCodec{
		secret:     []byte(cfg.JWTSecret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}, nil
}

func (c *TokenCodec) AccessTTL() time.Duration { return c.accessTTL }

func (c *TokenCodec) Issue(subject string, typ TokenType, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := TokenClaims{
		TokenType: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// IssuePair mints an access/refresh pair sharing the same subject with
// type-specific expirations.
func (c *TokenCodec) IssuePair(subject string) (*model.TokenResponse, error) {
	access, err := c.Issue(subject, TokenAccess, c.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := c.Issue(subject, TokenRefresh, c.refreshTTL)
	if err != nil {
		return nil, err
	}
	return &model.TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		ExpiresIn:    int64(c.accessTTL.Seconds()),
	}, nil
}

// Decode verifies the signature, then expiry, and returns the claims.
// Signature verification happens before any claim is trusted, so a tampered
// token never reaches the semantic checks.
func (c *TokenCodec) Decode(tokenStr string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return c.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if !token.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// ExpiryOf returns the expiry of a token whose signature checks out, even if
// the token itself has already expired. Logout needs this to blacklist a
// token for exactly its remaining lifetime.
func (c *TokenCodec) ExpiryOf(tokenStr string) (time.Time, error) {
	claims := &TokenClaims{}
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	_, err := parser.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return c.secret, nil
	})
	if err != nil {
		return time.Time{}, ErrTokenInvalid
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, ErrTokenInvalid
	}
	return claims.ExpiresAt.Time, nil
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"golang.org/x/oauth2/google"

	"github.com/niu-24-19333-stack/ScamShield/internal/config"
	"github.com/niu-24-19333-stack/ScamShield/internal/model"
)

const googleIssuer = "https://accounts.google.com"

var (
	ErrOAuthNotConfigured = errors.New("oauth provider not configured")
	ErrOAuthExchange      = errors.New("oauth exchange failed")
)

// OAuthService exchanges provider authorization codes for verified identity
// assertions. It never touches local user state; the orchestrator does that.
type OAuthService struct {
	googleCfg      *oauth2.Config
	googleVerifier *oidc.IDTokenVerifier
	githubCfg      *oauth2.Config
	httpClient     *http.Client
}

// NewOAuthService builds configured provider exchangers. Providers without
// credentials stay nil and their endpoints report ErrOAuthNotConfigured.
func NewOAuthService(ctx context.Context, cfg config.OAuthConfig) (*OAuthService, error) {
	s := &OAuthService{
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}

	if cfg.GoogleClientID != "" && cfg.GoogleClientSecret != "" {
		provider, err := oidc.NewProvider(ctx, googleIssuer)
		if err != nil {
			return nil, fmt.Errorf("failed to init google oidc provider: %w", err)
		}
		s.googleVerifier = provider.Verifier(&oidc.Config{ClientID: cfg.GoogleClientID})
		s.googleCfg = &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURI,
			Endpoint:     google.Endpoint,
			Scopes:       []string{oidc.ScopeOpenID, "email", "profile"},
		}
	}

	if cfg.GitHubClientID != "" && cfg.GitHubClientSecret != "" {
		s.githubCfg = &oauth2.Config{
			ClientID:     cfg.GitHubClientID,
			ClientSecret: cfg.GitHubClientSecret,
			RedirectURL:  cfg.GitHubRedirectURI,
			Endpoint:     github.Endpoint,
			Scopes:       []string{"read:user", "user:email"},
		}
	}

	return s, nil
}

// ExchangeGoogleCode trades an authorization code for tokens and verifies the
// bundled ID token.
func (s *OAuthService) ExchangeGoogleCode(ctx context.Context, code, redirectURI string) (*model.OAuthUserInfo, error) {
	if s.googleCfg == nil {
		return nil, ErrOAuthNotConfigured
	}

	cfg := *s.googleCfg
	if redirectURI != "" {
		cfg.RedirectURL = redirectURI
	}

	token, err := cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOAuthExchange, err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, fmt.Errorf("%w: no id_token in response", ErrOAuthExchange)
	}
	return s.VerifyGoogleIDToken(ctx, rawIDToken)
}

// VerifyGoogleIDToken validates signature, audience and issuer of a Google ID
// token (the frontend one-tap flow posts these directly).
func (s *OAuthService) VerifyGoogleIDToken(ctx context.Context, rawIDToken string) (*model.OAuthUserInfo, error) {
	if s.googleVerifier == nil {
		return nil, ErrOAuthNotConfigured
	}

	idToken, err := s.googleVerifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOAuthExchange, err)
	}

	var claims struct {
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
		Name          string `json:"name"`
		Picture       string `json:"picture"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOAuthExchange, err)
	}
	if claims.Email == "" || !claims.EmailVerified {
		return nil, fmt.Errorf("%w: email missing or unverified", ErrOAuthExchange)
	}

	return &model.OAuthUserInfo{
		Email:     claims.Email,
		FullName:  claims.Name,
		AvatarURL: claims.Picture,
		OAuthID:   idToken.Subject,
		Provider:  model.ProviderGoogle,
	}, nil
}

// ExchangeGitHubCode trades an authorization code for an access token and
// pulls the profile (plus the primary email when the profile hides it).
func (s *OAuthService) ExchangeGitHubCode(ctx context.Context, code string) (*model.OAuthUserInfo, error) {
	if s.githubCfg == nil {
		return nil, ErrOAuthNotConfigured
	}

	token, err := s.githubCfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOAuthExchange, err)
	}

	var profile struct {
		ID        int64  `json:"id"`
		Login     string `json:"login"`
		Name      string `json:"name"`
		Email     string `json:"email"`
		AvatarURL string `json:"avatar_url"`
	}
	if err := s.githubGet(ctx, token.AccessToken, "https://api.github.com/user", &profile); err != nil {
		return nil, err
	}

	email := profile.Email
	if email == "" {
		email, err = s.githubPrimaryEmail(ctx, token.AccessToken)
		if err != nil {
			return nil, err
		}
	}
	if email == "" {
		return nil, fmt.Errorf("%w: no verified email on github account", ErrOAuthExchange)
	}

	name := profile.Name
	if name == "" {
		name = profile.Login
	}

	return &model.OAuthUserInfo{
		Email:     email,
		FullName:  name,
		AvatarURL: profile.AvatarURL,
		OAuthID:   strconv.FormatInt(profile.ID, 10),
		Provider:  model.ProviderGitHub,
	}, nil
}

func (s *OAuthService) githubPrimaryEmail(ctx context.Context, accessToken string) (string, error) {
	var emails []struct {
		Email    string `json:"email"`
		Primary  bool   `json:"primary"`
		Verified bool   `json:"verified"`
	}
	if err := s.githubGet(ctx, accessToken, "https://api.github.com/user/emails", &emails); err != nil {
		return "", err
	}
	for _, e := range emails {
		if e.Primary && e.Verified {
			return e.Email, nil
		}
	}
	for _, e := range emails {
		if e.Verified {
			return e.Email, nil
		}
	}
	return "", nil
}

func (s *OAuthService) githubGet(ctx context.Context, accessToken, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrOAuthExchange, err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrOAuthExchange, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: github api returned %d", ErrOAuthExchange, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrOAuthExchange, err)
	}
	return nil
}

package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

var (
	errMissingOAuthClientID     = errors.New("client id required")
	errMissingOAuthClientSecret = errors.New("client secret required")
	errMissingOAuthRedirectURL  = errors.New("redirect url required")
	errMissingOAuthVerifier     = errors.New("id token verifier required")

	// ErrInvalidProviderConfig indicates the OAuth provider cannot be constructed.
	ErrInvalidProviderConfig = errors.New("auth: invalid google provider config")
)

// IDTokenVerifier validates a raw Google ID token and extracts the profile.
type IDTokenVerifier interface {
	Verify(ctx context.Context, rawToken string) (GoogleProfile, error)
}

// GoogleProviderConfig configures the authorization-code flow against Google.
type GoogleProviderConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Verifier     IDTokenVerifier
}

// GoogleProvider drives the OAuth authorization-code dance: it builds the
// consent URL, exchanges the callback code server-side, and hands the ID
// token from the exchange to an offline verifier. The client secret never
// leaves the server.
type GoogleProvider struct {
	oauth    *oauth2.Config
	verifier IDTokenVerifier
}

// NewGoogleProvider constructs a provider with validated configuration.
func NewGoogleProvider(cfg GoogleProviderConfig) (*GoogleProvider, error) {
	if cfg.ClientID == "" {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProviderConfig, errMissingOAuthClientID)
	}
	if cfg.ClientSecret == "" {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProviderConfig, errMissingOAuthClientSecret)
	}
	if cfg.RedirectURL == "" {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProviderConfig, errMissingOAuthRedirectURL)
	}
	if cfg.Verifier == nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProviderConfig, errMissingOAuthVerifier)
	}

	return &GoogleProvider{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"openid", "profile", "email"},
			Endpoint:     google.Endpoint,
		},
		verifier: cfg.Verifier,
	}, nil
}

// AuthCodeURL returns the consent URL to redirect the user to. The state
// value must round-trip through the callback to tie the redirect back to the
// browser session that initiated it.
func (p *GoogleProvider) AuthCodeURL(state string) string {
	return p.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange trades the callback authorization code for a verified profile.
func (p *GoogleProvider) Exchange(ctx context.Context, code string) (GoogleProfile, error) {
	token, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return GoogleProfile{}, fmt.Errorf("auth: exchanging authorization code: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return GoogleProfile{}, errors.New("auth: token response missing id_token")
	}

	profile, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return GoogleProfile{}, fmt.Errorf("auth: verifying id token: %w", err)
	}
	return profile, nil
}

// NewStateToken returns a random URL-safe state value for CSRF protection
// of the OAuth redirect.
func NewStateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("auth: generating state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

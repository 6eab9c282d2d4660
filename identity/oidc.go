package identity

import (
	"context"
	"fmt"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	apperrors "github.com/botworks/club-server/internal/errors"
)

// OIDCVerifier verifies ID tokens against an OpenID Connect provider and
// also carries the oauth2 configuration for the browser login redirect.
type OIDCVerifier struct {
	provider *oidc.Provider
	verifier *oidc.IDTokenVerifier
	oauth2   *oauth2.Config
}

// NewOIDCVerifier discovers the provider's configuration from its issuer URL.
// redirectURL is where the provider sends the user back after login.
func NewOIDCVerifier(ctx context.Context, issuer, clientID, clientSecret, redirectURL string) (*OIDCVerifier, error) {
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("[NewOIDCVerifier] provider discovery: %w", err)
	}

	return &OIDCVerifier{
		provider: provider,
		verifier: provider.Verifier(&oidc.Config{ClientID: clientID}),
		oauth2: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
	}, nil
}

// Verify implements Verifier.
func (v *OIDCVerifier) Verify(ctx context.Context, rawToken string) (*VerifiedIdentity, error) {
	if strings.TrimSpace(rawToken) == "" {
		return nil, apperrors.ErrUnauthenticated
	}

	idToken, err := v.verifier.Verify(ctx, rawToken)
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidCredential, "oidc verify: %v", err)
	}

	var claims struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidCredential, "oidc claims: %v", err)
	}

	return &VerifiedIdentity{
		Subject: idToken.Subject,
		Email:   claims.Email,
		Name:    claims.Name,
	}, nil
}

// AuthCodeURL returns the provider login URL for the given CSRF state.
func (v *OIDCVerifier) AuthCodeURL(state string) string {
	return v.oauth2.AuthCodeURL(state)
}

// Exchange swaps an authorization code for the provider's raw ID token.
func (v *OIDCVerifier) Exchange(ctx context.Context, code string) (string, error) {
	tok, err := v.oauth2.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("[OIDCVerifier Exchange] code exchange: %w", err)
	}
	rawIDToken, ok := tok.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return "", fmt.Errorf("[OIDCVerifier Exchange] provider response missing id_token")
	}
	return rawIDToken, nil
}

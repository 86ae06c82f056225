// Package bank talks to the banking API: the OAuth2 client-credentials
// exchange and the account/transaction endpoints.
package bank

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/fintrack/internal/common"
	"github.com/dmitrijs2005/fintrack/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// TokenPath is the client-credentials endpoint, relative to the base URL.
const TokenPath = "/identity/v2/oauth2/token"

// DefaultTokenLifetime is assumed when neither expires_in nor a JWT exp
// claim tells when the token expires.
const DefaultTokenLifetime = 30 * time.Minute

// Exchanger trades long-lived credentials for a bearer token.
type Exchanger struct {
	tokenURL   string
	httpClient *http.Client
	now        func() time.Time
}

func NewExchanger(baseURL string, httpClient *http.Client) *Exchanger {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Exchanger{
		tokenURL:   strings.TrimRight(baseURL, "/") + TokenPath,
		httpClient: httpClient,
		now:        time.Now,
	}
}

// apiKeyTransport adds the vendor API key to every request.
type apiKeyTransport struct {
	key  string
	base http.RoundTripper
}

func (t *apiKeyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.Header.Set(common.APIKeyHeaderName, t.key)
	return t.base.RoundTrip(r)
}

// Exchange posts grant_type=client_credentials with HTTP Basic auth and the
// API key header. Rejected credentials map to common.ErrUnauthorized,
// transport failures and 5xx to common.ErrUnavailable.
func (e *Exchanger) Exchange(ctx context.Context, creds models.Credentials) (*models.Token, error) {
	base := e.httpClient.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	hc := &http.Client{
		Transport: &apiKeyTransport{key: creds.APIKey, base: base},
		Timeout:   e.httpClient.Timeout,
	}

	cfg := clientcredentials.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		TokenURL:     e.tokenURL,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}

	tok, err := cfg.Token(context.WithValue(ctx, oauth2.HTTPClient, hc))
	if err != nil {
		return nil, mapExchangeError(err)
	}

	out := &models.Token{
		AccessToken: tok.AccessToken,
		TokenType:   tok.TokenType,
		Expiry:      tok.Expiry,
	}
	if scope, ok := tok.Extra("scope").(string); ok {
		out.Scope = scope
	}

	if out.Expiry.IsZero() {
		out.Expiry = e.expiryFromClaims(tok.AccessToken)
	}
	return out, nil
}

// expiryFromClaims reads the exp claim of a JWT access token without
// verifying it; the token is opaque to us otherwise.
func (e *Exchanger) expiryFromClaims(accessToken string) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err == nil {
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			return exp.Time
		}
	}
	return e.now().Add(DefaultTokenLifetime)
}

func mapExchangeError(err error) error {
	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) && rerr.Response != nil {
		switch code := rerr.Response.StatusCode; {
		case code == http.StatusBadRequest || code == http.StatusUnauthorized || code == http.StatusForbidden:
			return fmt.Errorf("token exchange: %w", common.ErrUnauthorized)
		case code >= 500:
			return fmt.Errorf("token exchange: %s: %w", rerr.Response.Status, common.ErrUnavailable)
		}
		return fmt.Errorf("token exchange: %w", err)
	}

	var uerr *url.Error
	var nerr net.Error
	if errors.As(err, &uerr) || errors.As(err, &nerr) {
		return fmt.Errorf("token exchange: %v: %w", err, common.ErrUnavailable)
	}
	return fmt.Errorf("token exchange: %w", err)
}

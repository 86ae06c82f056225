package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/fintrack/internal/common"
	"github.com/dmitrijs2005/fintrack/internal/logging"
	"github.com/dmitrijs2005/fintrack/internal/models"
	"github.com/dmitrijs2005/fintrack/internal/secrets"
)

// TokenExpiryBuffer is kept in reserve before a token's expiry; inside it the
// token counts as expired.
const TokenExpiryBuffer = 300 * time.Second

// CredentialExchanger obtains a bearer token for long-lived credentials.
type CredentialExchanger interface {
	Exchange(ctx context.Context, creds models.Credentials) (*models.Token, error)
}

// SecretStore persists sealed values by name.
type SecretStore interface {
	Put(ctx context.Context, name string, value any) error
	Get(ctx context.Context, name string, dst any) (bool, error)
	Delete(ctx context.Context, name string) error
}

// AuthService caches the bearer token used by the bank client.
//
// Contract:
//   - Token: return a token valid beyond TokenExpiryBuffer, re-exchanging
//     stored credentials when needed; common.ErrNotAuthenticated if there are
//     none.
//   - Login: exchange creds, then persist them and the new token.
//   - Invalidate: drop the cached token if it is still the one given, so the
//     next Token call re-exchanges.
//   - Logout: forget credentials and token, in memory and in the store.
type AuthService interface {
	Token(ctx context.Context) (string, error)
	Invalidate(ctx context.Context, token string)
	Login(ctx context.Context, creds models.Credentials) error
	Logout(ctx context.Context) error
	LoggedIn(ctx context.Context) (bool, error)
}

type authService struct {
	exchanger CredentialExchanger
	secrets   SecretStore
	logger    logging.Logger
	now       func() time.Time

	mu     sync.Mutex
	token  *models.Token
	loaded bool
}

func NewAuthService(exchanger CredentialExchanger, secrets SecretStore, logger logging.Logger) AuthService {
	return &authService{
		exchanger: exchanger,
		secrets:   secrets,
		logger:    logger,
		now:       time.Now,
	}
}

// Token is serialized so concurrent callers trigger at most one exchange.
func (a *authService) Token(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.loaded {
		var saved models.Token
		found, err := a.secrets.Get(ctx, secrets.KeyBankToken, &saved)
		if err != nil {
			return "", fmt.Errorf("load cached token: %w", err)
		}
		if found {
			a.token = &saved
		}
		a.loaded = true
	}

	if a.token.ValidAt(a.now(), TokenExpiryBuffer) {
		return a.token.AccessToken, nil
	}

	var creds models.Credentials
	found, err := a.secrets.Get(ctx, secrets.KeyBankCredentials, &creds)
	if err != nil {
		return "", fmt.Errorf("load credentials: %w", err)
	}
	if !found {
		return "", common.ErrNotAuthenticated
	}

	a.logger.Debug(ctx, "bearer token expired, exchanging credentials")
	tok, err := a.exchanger.Exchange(ctx, creds)
	if err != nil {
		return "", err
	}

	a.token = tok
	if err := a.secrets.Put(ctx, secrets.KeyBankToken, tok); err != nil {
		a.logger.Warn(ctx, "failed to persist bearer token", "error", err)
	}
	return tok.AccessToken, nil
}

// Invalidate is a no-op when token is no longer the cached one, so a late
// rejection cannot evict a token refreshed in the meantime.
func (a *authService) Invalidate(ctx context.Context, token string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.token == nil || a.token.AccessToken != token {
		return
	}
	a.token = nil
	a.loaded = true
	a.logger.Info(ctx, "bearer token rejected, dropping it")
	if err := a.secrets.Delete(ctx, secrets.KeyBankToken); err != nil {
		a.logger.Warn(ctx, "failed to delete rejected bearer token", "error", err)
	}
}

func (a *authService) Login(ctx context.Context, creds models.Credentials) error {
	if creds.ClientID == "" || creds.ClientSecret == "" || creds.APIKey == "" {
		return fmt.Errorf("client id, client secret and api key are required: %w", common.ErrValidation)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	tok, err := a.exchanger.Exchange(ctx, creds)
	if err != nil {
		return fmt.Errorf("login error: %w", err)
	}

	if err := a.secrets.Put(ctx, secrets.KeyBankCredentials, creds); err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}
	if err := a.secrets.Put(ctx, secrets.KeyBankToken, tok); err != nil {
		return fmt.Errorf("save token: %w", err)
	}

	a.token = tok
	a.loaded = true
	a.logger.Info(ctx, "logged in", "expires_at", tok.Expiry.Format(time.RFC3339))
	return nil
}

func (a *authService) Logout(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.token = nil
	a.loaded = true

	if err := a.secrets.Delete(ctx, secrets.KeyBankCredentials); err != nil {
		return fmt.Errorf("delete credentials: %w", err)
	}
	if err := a.secrets.Delete(ctx, secrets.KeyBankToken); err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	return nil
}

// LoggedIn reports whether credentials are stored.
func (a *authService) LoggedIn(ctx context.Context) (bool, error) {
	var creds models.Credentials
	return a.secrets.Get(ctx, secrets.KeyBankCredentials, &creds)
}

// Package secrets keeps long-lived secrets (bank credentials, the cached
// bearer token, the LLM API key) sealed in the metadata table.
//
// The sealing key is derived from a passphrase with argon2id. Only a salt and
// a verifier digest are stored, so a wrong passphrase is detected before any
// ciphertext is opened.
package secrets

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/fintrack/internal/common"
	"github.com/dmitrijs2005/fintrack/internal/cryptox"
	"github.com/dmitrijs2005/fintrack/internal/repositories/metadata"
)

const (
	KeyBankCredentials = "bank_credentials"
	KeyBankToken       = "bank_token"
	KeyLLMAPIKey       = "llm_api_key"

	saltKey     = "vault_salt"
	verifierKey = "vault_check"
	sealedKey   = "secret:"
)

var ErrLocked = errors.New("secret store is locked")

// Vault seals JSON-encodable values under a passphrase-derived key.
type Vault struct {
	repo metadata.Repository

	mu  sync.RWMutex
	key []byte
}

func NewVault(repo metadata.Repository) *Vault {
	return &Vault{repo: repo}
}

// Initialized reports whether a passphrase has ever been set.
func (v *Vault) Initialized(ctx context.Context) (bool, error) {
	salt, err := v.repo.Get(ctx, saltKey)
	if err != nil {
		return false, err
	}
	return salt != nil, nil
}

// Unlock derives the key from passphrase. The first call on an empty store
// sets the passphrase; later calls must present the same one or get
// common.ErrWrongPassphrase.
func (v *Vault) Unlock(ctx context.Context, passphrase []byte) error {
	salt, err := v.repo.Get(ctx, saltKey)
	if err != nil {
		return fmt.Errorf("read salt: %w", err)
	}

	if salt == nil {
		salt = common.GenerateRandByteArray(cryptox.SaltSize)
		key := cryptox.DeriveKey(passphrase, salt)
		if err := v.repo.Set(ctx, saltKey, salt); err != nil {
			return fmt.Errorf("save salt: %w", err)
		}
		if err := v.repo.Set(ctx, verifierKey, cryptox.MakeVerifier(key)); err != nil {
			return fmt.Errorf("save verifier: %w", err)
		}
		v.setKey(key)
		return nil
	}

	saved, err := v.repo.Get(ctx, verifierKey)
	if err != nil {
		return fmt.Errorf("read verifier: %w", err)
	}

	key := cryptox.DeriveKey(passphrase, salt)
	if subtle.ConstantTimeCompare(saved, cryptox.MakeVerifier(key)) == 0 {
		common.WipeByteArray(key)
		return common.ErrWrongPassphrase
	}

	v.setKey(key)
	return nil
}

func (v *Vault) setKey(key []byte) {
	v.mu.Lock()
	defer v.mu.Unlock()
	common.WipeByteArray(v.key)
	v.key = key
}

// Lock forgets the key. Sealed values stay in the store.
func (v *Vault) Lock() {
	v.setKey(nil)
}

func (v *Vault) Unlocked() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.key != nil
}

// Put seals value and stores it under name, replacing any previous value.
func (v *Vault) Put(ctx context.Context, name string, value any) error {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if v.key == nil {
		return ErrLocked
	}

	sealed, err := cryptox.SealJSON(value, v.key)
	if err != nil {
		return fmt.Errorf("seal %s: %w", name, err)
	}
	return v.repo.Set(ctx, sealedKey+name, sealed)
}

// Get opens the value stored under name into dst. It reports false when
// nothing is stored.
func (v *Vault) Get(ctx context.Context, name string, dst any) (bool, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if v.key == nil {
		return false, ErrLocked
	}

	sealed, err := v.repo.Get(ctx, sealedKey+name)
	if err != nil {
		return false, err
	}
	if sealed == nil {
		return false, nil
	}

	if err := cryptox.OpenJSON(sealed, v.key, dst); err != nil {
		return false, fmt.Errorf("open %s: %w", name, err)
	}
	return true, nil
}

// Delete removes the value stored under name. It works while locked.
func (v *Vault) Delete(ctx context.Context, name string) error {
	return v.repo.Delete(ctx, sealedKey+name)
}

package secrets

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/dmitrijs2005/fintrack/internal/common"
	"github.com/dmitrijs2005/fintrack/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	mu   sync.Mutex
	data map[string][]byte
	err  error
}

func newMemRepo() *memRepo {
	return &memRepo{data: map[string][]byte{}}
}

func (m *memRepo) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.data[key], nil
}

func (m *memRepo) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *memRepo) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *memRepo) List(_ context.Context) (map[string][]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string][]byte, len(m.data))
	for k, v := range m.data {
		out[k] = v
	}
	return out, nil
}

func (m *memRepo) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = map[string][]byte{}
	return nil
}

func TestUnlock_FirstUseSetsPassphrase(t *testing.T) {
	repo := newMemRepo()
	v := NewVault(repo)
	ctx := context.Background()

	ok, err := v.Initialized(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, v.Unlock(ctx, []byte("pw")))
	assert.True(t, v.Unlocked())

	ok, err = v.Initialized(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Len(t, repo.data[saltKey], 16)
	assert.Len(t, repo.data[verifierKey], 32)
}

func TestUnlock_WrongPassphrase(t *testing.T) {
	repo := newMemRepo()
	ctx := context.Background()
	require.NoError(t, NewVault(repo).Unlock(ctx, []byte("right")))

	v := NewVault(repo)
	err := v.Unlock(ctx, []byte("wrong"))
	require.ErrorIs(t, err, common.ErrWrongPassphrase)
	assert.False(t, v.Unlocked())

	require.NoError(t, v.Unlock(ctx, []byte("right")))
	assert.True(t, v.Unlocked())
}

func TestPutGet_RoundTripAcrossInstances(t *testing.T) {
	repo := newMemRepo()
	ctx := context.Background()

	v := NewVault(repo)
	require.NoError(t, v.Unlock(ctx, []byte("pw")))

	creds := models.Credentials{ClientID: "id", ClientSecret: "secret", APIKey: "key"}
	require.NoError(t, v.Put(ctx, KeyBankCredentials, creds))
	assert.NotContains(t, string(repo.data[sealedKey+KeyBankCredentials]), "secret")

	other := NewVault(repo)
	require.NoError(t, other.Unlock(ctx, []byte("pw")))

	var got models.Credentials
	found, err := other.Get(ctx, KeyBankCredentials, &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, creds, got)
}

func TestGet_MissingReportsFalse(t *testing.T) {
	v := NewVault(newMemRepo())
	ctx := context.Background()
	require.NoError(t, v.Unlock(ctx, []byte("pw")))

	var s string
	found, err := v.Get(ctx, KeyLLMAPIKey, &s)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestLocked_RejectsPutAndGet(t *testing.T) {
	v := NewVault(newMemRepo())
	ctx := context.Background()

	require.ErrorIs(t, v.Put(ctx, KeyLLMAPIKey, "k"), ErrLocked)
	var s string
	_, err := v.Get(ctx, KeyLLMAPIKey, &s)
	require.ErrorIs(t, err, ErrLocked)

	require.NoError(t, v.Unlock(ctx, []byte("pw")))
	v.Lock()
	assert.False(t, v.Unlocked())
	require.ErrorIs(t, v.Put(ctx, KeyLLMAPIKey, "k"), ErrLocked)
}

func TestDelete_RemovesSealedValue(t *testing.T) {
	repo := newMemRepo()
	v := NewVault(repo)
	ctx := context.Background()
	require.NoError(t, v.Unlock(ctx, []byte("pw")))
	require.NoError(t, v.Put(ctx, KeyBankToken, models.Token{AccessToken: "a"}))

	require.NoError(t, v.Delete(ctx, KeyBankToken))

	var tok models.Token
	found, err := v.Get(ctx, KeyBankToken, &tok)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestUnlock_PropagatesStoreError(t *testing.T) {
	repo := newMemRepo()
	repo.err = errors.New("disk")

	err := NewVault(repo).Unlock(context.Background(), []byte("pw"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read salt")
}

package cryptox

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveKey_Deterministic(t *testing.T) {
	passphrase := []byte("secret-password")
	salt := []byte("fixed-salt")

	key1 := DeriveKey(passphrase, salt)
	key2 := DeriveKey(passphrase, salt)

	require.Len(t, key1, KeySize)
	if !bytes.Equal(key1, key2) {
		t.Errorf("expected same result for same inputs, got different")
	}
}

func TestDeriveKey_DifferentSalts(t *testing.T) {
	key1 := DeriveKey([]byte("secret-password"), []byte("salt-1"))
	key2 := DeriveKey([]byte("secret-password"), []byte("salt-2"))

	if bytes.Equal(key1, key2) {
		t.Errorf("expected different results for different salts, got same")
	}
}

func TestSealOpen_RoundTrip(t *testing.T) {
	key := DeriveKey([]byte("pw"), []byte("salt"))

	sealed, err := Seal([]byte("client-secret"), key)
	require.NoError(t, err)
	assert.NotContains(t, string(sealed), "client-secret")

	plain, err := Open(sealed, key)
	require.NoError(t, err)
	assert.Equal(t, "client-secret", string(plain))
}

func TestOpen_WrongKeyFails(t *testing.T) {
	sealed, err := Seal([]byte("data"), DeriveKey([]byte("a"), []byte("salt")))
	require.NoError(t, err)

	_, err = Open(sealed, DeriveKey([]byte("b"), []byte("salt")))
	require.Error(t, err)
}

func TestOpen_Truncated(t *testing.T) {
	_, err := Open([]byte{1, 2, 3}, make([]byte, KeySize))
	require.ErrorIs(t, err, ErrCiphertextTooShort)
}

func TestSealJSON_OpenJSON(t *testing.T) {
	type creds struct {
		ClientID string `json:"client_id"`
	}
	key := make([]byte, KeySize)

	sealed, err := SealJSON(creds{ClientID: "abc"}, key)
	require.NoError(t, err)

	var got creds
	require.NoError(t, OpenJSON(sealed, key, &got))
	assert.Equal(t, "abc", got.ClientID)
}

func TestMakeVerifier(t *testing.T) {
	v := MakeVerifier([]byte("key"))
	assert.Len(t, v, 32)
	assert.Equal(t, v, MakeVerifier([]byte("key")))
}

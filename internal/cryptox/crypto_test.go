package cryptox

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/argon2"
)

func TestDeriveKey_Deterministic(t *testing.T) {
	password := []byte("secret-password")
	salt := []byte("fixed-salt")

	key1 := DeriveKey(password, salt)
	key2 := DeriveKey(password, salt)

	if !bytes.Equal(key1, key2) {
		t.Errorf("expected same result for same inputs, got different")
	}

	// argon2id, 1 pass, 64 MiB, 4 lanes
	expected := argon2.IDKey(password, salt, 1, 64*1024, 4, 32)
	if hex.EncodeToString(key1) != hex.EncodeToString(expected) {
		t.Errorf("expected %x, got %x", expected, key1)
	}
	if len(key1) != 32 {
		t.Errorf("expected a 32-byte key, got %d bytes", len(key1))
	}
}

func TestDeriveKey_DifferentInputs(t *testing.T) {
	password := []byte("secret-password")

	key1 := DeriveKey(password, []byte("salt-1"))
	key2 := DeriveKey(password, []byte("salt-2"))

	if bytes.Equal(key1, key2) {
		t.Errorf("expected different results for different salts, got same")
	}
}

func TestSealOpen(t *testing.T) {
	key := DeriveKey([]byte("pass"), []byte("salt"))

	sealed, err := Seal([]byte("123-456-789"), key)
	require.NoError(t, err)
	assert.NotContains(t, string(sealed), "123-456-789")

	again, err := Seal([]byte("123-456-789"), key)
	require.NoError(t, err)
	assert.NotEqual(t, sealed, again, "nonce must differ")

	plain, err := Open(sealed, key)
	require.NoError(t, err)
	assert.Equal(t, "123-456-789", string(plain))

	_, err = Open(sealed, DeriveKey([]byte("other"), []byte("salt")))
	assert.Error(t, err)

	_, err = Open([]byte{1, 2, 3}, key)
	assert.ErrorIs(t, err, ErrCiphertextTooShort)

	_, err = Seal([]byte("x"), []byte("short"))
	assert.Error(t, err)
}

func TestBox(t *testing.T) {
	box := NewBox(DeriveKey([]byte("pass"), []byte("salt")))

	enc, err := box.EncryptString("")
	require.NoError(t, err)
	assert.Nil(t, enc)

	s, err := box.DecryptString(nil)
	require.NoError(t, err)
	assert.Equal(t, "", s)

	enc, err = box.EncryptString("CA-0001-22")
	require.NoError(t, err)
	s, err = box.DecryptString(enc)
	require.NoError(t, err)
	assert.Equal(t, "CA-0001-22", s)
}

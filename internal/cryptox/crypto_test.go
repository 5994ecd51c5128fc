package cryptox

import (
	"bytes"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveKey_Deterministic(t *testing.T) {
	password := []byte("secret-password")
	salt := []byte("fixed-salt")

	key1 := DeriveKey(password, salt)
	key2 := DeriveKey(password, salt)

	if !bytes.Equal(key1, key2) {
		t.Errorf("expected same result for same inputs, got different")
	}

	// snapshot: parameters must not drift or stored hashes stop verifying
	expectedHex := "9290403300158e19f27e48e7087f7383b03065bf5b25ef23ebc40229616cd8b3"
	if hex.EncodeToString(key1) != expectedHex {
		t.Errorf("expected %s, got %s", expectedHex, hex.EncodeToString(key1))
	}
}

func TestDeriveKey_DifferentSalts(t *testing.T) {
	password := []byte("secret-password")
	key1 := DeriveKey(password, []byte("salt-1"))
	key2 := DeriveKey(password, []byte("salt-2"))
	assert.NotEqual(t, key1, key2)
}

func TestHashPassword_Format(t *testing.T) {
	h := HashPassword([]byte("abcdef"))
	parts := strings.Split(h, "$")
	require.Len(t, parts, 3)
	assert.Equal(t, "argon2id", parts[0])

	// fresh salt per call
	assert.NotEqual(t, h, HashPassword([]byte("abcdef")))
}

func TestVerifyPassword(t *testing.T) {
	h := HashPassword([]byte("abcdef"))

	tests := []struct {
		name     string
		password string
		want     bool
	}{
		{"correct", "abcdef", true},
		{"wrong", "abcdeg", false},
		{"empty", "", false},
		{"prefix", "abc", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := VerifyPassword([]byte(tt.password), h)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestVerifyPassword_MalformedHash(t *testing.T) {
	for _, encoded := range []string{"", "plain", "bcrypt$a$b", "argon2id$!!$abc", "argon2id$$"} {
		ok, err := VerifyPassword([]byte("abcdef"), encoded)
		assert.False(t, ok, encoded)
		assert.ErrorIs(t, err, ErrMalformedHash, encoded)
	}
}

// Package cryptox derives and checks the one-way password hash stored for the
// local identity.
package cryptox

import (
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"strings"

	"github.com/dmitrijs2005/rooznegar/internal/common"
	"golang.org/x/crypto/argon2"
)

const (
	hashScheme = "argon2id"
	saltSize   = 16
)

// ErrMalformedHash is returned when a stored hash string cannot be parsed.
var ErrMalformedHash = errors.New("malformed password hash")

// DeriveKey runs Argon2id over password and salt with the parameters used for
// every stored hash. Changing them invalidates existing identities.
func DeriveKey(password []byte, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, 32)
}

// HashPassword derives a hash for password with a fresh random salt and
// encodes it as "argon2id$<salt>$<key>" (base64, no padding).
func HashPassword(password []byte) string {
	salt := common.GenerateRandByteArray(saltSize)
	key := DeriveKey(password, salt)
	return encode(salt, key)
}

// VerifyPassword reports whether password derives the same key as encoded.
// The comparison runs in constant time.
func VerifyPassword(password []byte, encoded string) (bool, error) {
	salt, want, err := decode(encoded)
	if err != nil {
		return false, err
	}
	got := DeriveKey(password, salt)
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}

func encode(salt, key []byte) string {
	enc := base64.RawStdEncoding
	return hashScheme + "$" + enc.EncodeToString(salt) + "$" + enc.EncodeToString(key)
}

func decode(encoded string) (salt, key []byte, err error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 3 || parts[0] != hashScheme {
		return nil, nil, ErrMalformedHash
	}
	enc := base64.RawStdEncoding
	if salt, err = enc.DecodeString(parts[1]); err != nil {
		return nil, nil, ErrMalformedHash
	}
	if key, err = enc.DecodeString(parts[2]); err != nil {
		return nil, nil, ErrMalformedHash
	}
	if len(salt) == 0 || len(key) == 0 {
		return nil, nil, ErrMalformedHash
	}
	return salt, key, nil
}

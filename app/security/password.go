package security

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha512"
)

// SaltSize is the HMAC-SHA512 block size, used as the key length.
const SaltSize = sha512.BlockSize

// HashPassword derives a salted hash for plaintext. A fresh random salt is
// generated on every call and doubles as the HMAC key.
func HashPassword(plaintext string) (hash []byte, salt []byte, err error) {
	salt = make([]byte, SaltSize)
	if _, err = rand.Read(salt); err != nil {
		return nil, nil, err
	}

	return computeHash(plaintext, salt), salt, nil
}

// VerifyPassword reports whether plaintext matches the stored hash and salt.
func VerifyPassword(plaintext string, hash, salt []byte) bool {
	if len(hash) == 0 || len(salt) == 0 {
		return false
	}

	return hmac.Equal(computeHash(plaintext, salt), hash)
}

func computeHash(plaintext string, salt []byte) []byte {
	mac := hmac.New(sha512.New, salt)
	mac.Write([]byte(plaintext))
	return mac.Sum(nil)
}

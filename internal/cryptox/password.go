// Package cryptox implements local password verification material.
//
// The legacy client cached passwords with a reversible base64 encoding.
// That scheme is deliberately not reproduced: credentials are derived with
// Argon2id over a per-entry random salt and compared in constant time.
package cryptox

import (
	"crypto/subtle"

	"golang.org/x/crypto/argon2"

	"github.com/dmitrijs2005/planner/internal/common"
)

const (
	saltSize = 16

	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
)

// DeriveKey derives the verification key from a password and salt.
func DeriveKey(password, salt []byte) []byte {
	return argon2.IDKey(password, salt, argonTime, argonMemory, argonThreads, argonKeyLen)
}

// HashPassword returns a fresh random salt and the derived key for password.
func HashPassword(password []byte) (salt, key []byte) {
	salt = common.GenerateRandByteArray(saltSize)
	return salt, DeriveKey(password, salt)
}

// VerifyPassword reports whether password matches the stored salt/key pair.
// The comparison is constant-time.
func VerifyPassword(password, salt, key []byte) bool {
	candidate := DeriveKey(password, salt)
	return subtle.ConstantTimeCompare(candidate, key) == 1
}

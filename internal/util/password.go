package util

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"strings"
	"unicode"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters. Changing these invalidates every stored hash, so they
// are fixed for the lifetime of the credential table.
const (
	saltLength   = 16
	hashLength   = 32
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
)

const minPasswordLength = 12

// ValidatePassword enforces the account password policy: minimum length plus
// one character from each of the four classes.
func ValidatePassword(password string) error {
	if len(password) < minPasswordLength {
		return errors.New("password must be at least 12 characters long")
	}

	missing := make([]string, 0, 4)
	if !strings.ContainsFunc(password, unicode.IsUpper) {
		missing = append(missing, "an uppercase letter")
	}
	if !strings.ContainsFunc(password, unicode.IsLower) {
		missing = append(missing, "a lowercase letter")
	}
	if !strings.ContainsFunc(password, unicode.IsDigit) {
		missing = append(missing, "a digit")
	}
	if !strings.ContainsFunc(password, func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSymbol(r)
	}) {
		missing = append(missing, "a symbol")
	}

	if len(missing) > 0 {
		return errors.New("password must include " + strings.Join(missing, ", "))
	}
	return nil
}

// DerivePassword hashes a fresh password with a newly generated salt.
func DerivePassword(password string) (hash, salt []byte, err error) {
	salt = make([]byte, saltLength)
	if _, err = rand.Read(salt); err != nil {
		return nil, nil, err
	}
	hash, err = HashPassword(password, salt)
	if err != nil {
		return nil, nil, err
	}
	return hash, salt, nil
}

func HashPassword(password string, salt []byte) ([]byte, error) {
	if len(password) == 0 {
		return nil, errors.New("password cannot be empty")
	}
	if len(salt) == 0 {
		return nil, errors.New("salt cannot be empty")
	}
	return argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, hashLength), nil
}

func VerifyPassword(password string, salt, expectedHash []byte) bool {
	if len(password) == 0 || len(salt) == 0 || len(expectedHash) == 0 {
		return false
	}
	candidate, err := HashPassword(password, salt)
	if err != nil || len(candidate) != len(expectedHash) {
		return false
	}
	return subtle.ConstantTimeCompare(candidate, expectedHash) == 1
}

package auth

import (
	"errors"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

const MinPasswordLength = 8

var ErrWeakPassword = errors.New("password must be at least 8 characters")

var (
	placeholderOnce sync.Once
	placeholderHash string
)

// PlaceholderHash is a bcrypt hash at the default cost. Comparing against it
// makes a login for an unknown email take as long as one for a known email;
// the result of that comparison is never used.
func PlaceholderHash() string {
	placeholderOnce.Do(func() {
		hash, err := bcrypt.GenerateFromPassword([]byte("placeholder-no-user"), bcrypt.DefaultCost)
		if err == nil {
			placeholderHash = string(hash)
		}
	})
	return placeholderHash
}

func HashPassword(password string) (string, error) {
	if len(password) < MinPasswordLength {
		return "", ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the stored bcrypt hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

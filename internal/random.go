package internal

import (
	"crypto/rand"
	"errors"
)

const maxSaltSize = 1024

// NewSalt returns n bytes from the system CSPRNG.
func NewSalt(n int) ([]byte, error) {
	if n <= 0 || n > maxSaltSize {
		return nil, errors.New("invalid salt size")
	}
	salt := make([]byte, n)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	return salt, nil
}

package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidPassword means the password does not match the stored hash.
	ErrInvalidPassword = errors.New("invalid password")
	// ErrPasswordTooLong means the password exceeds what bcrypt can hash (72 bytes).
	ErrPasswordTooLong = errors.New("password too long")
)

const maxPasswordBytes = 72

// HashPassword hashes a plaintext password. Costs outside bcrypt's range fall back to the default.
func HashPassword(password string, cost int) (string, error) {
	if len(password) > maxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// VerifyPassword checks a password against its stored hash.
func VerifyPassword(hashed, plain string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrInvalidPassword
	}
	return err
}

// Package config provides password configuration and hashing functionality.
package config

import (
	"fmt"
	"os"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

// DefaultPasswordMinLength matches the hosted auth service's default policy.
const DefaultPasswordMinLength = 6

// PasswordConfig holds configuration for password hashing and verification.
type PasswordConfig struct {
	BcryptCost int
	Pepper     string // optional global secret appended before hashing
	MinLength  int
}

// NewPasswordConfig creates a new password configuration from environment variables.
// It reads BCRYPT_COST (default: 12), PASSWORD_MIN_LENGTH (default: 6) and optionally PASSWORD_PEPPER.
func NewPasswordConfig() (*PasswordConfig, error) {
	cost, err := getEnvInt("BCRYPT_COST", 12)
	if err != nil {
		return nil, err
	}
	minLength, err := getEnvInt("PASSWORD_MIN_LENGTH", DefaultPasswordMinLength)
	if err != nil {
		return nil, err
	}

	config := &PasswordConfig{
		BcryptCost: cost,
		Pepper:     os.Getenv("PASSWORD_PEPPER"),
		MinLength:  minLength,
	}

	if err := config.normalize(); err != nil {
		return nil, err
	}

	return config, nil
}

// normalize validates the configuration.
func (c *PasswordConfig) normalize() error {
	if c.BcryptCost < 10 || c.BcryptCost > 14 {
		return fmt.Errorf("bcrypt cost out of range: %d (must be 10-14)", c.BcryptCost)
	}
	if c.MinLength < 1 || c.MinLength > 72 {
		return fmt.Errorf("PASSWORD_MIN_LENGTH out of range: %d (must be 1-72)", c.MinLength)
	}
	return nil
}

// IsStrongEnough reports whether pw satisfies the length policy. bcrypt only
// reads the first 72 bytes, so longer passwords are rejected too.
func (c *PasswordConfig) IsStrongEnough(pw string) bool {
	return utf8.RuneCountInString(pw) >= c.MinLength && len(pw)+len(c.Pepper) <= 72
}

// HashPassword hashes a password using bcrypt (with optional pepper).
func (c *PasswordConfig) HashPassword(pw string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pw+c.Pepper), c.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword verifies a password against a stored hash (with optional pepper).
func (c *PasswordConfig) VerifyPassword(pw, storedHash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(pw+c.Pepper)) == nil
}

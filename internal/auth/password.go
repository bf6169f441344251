package auth

import (
	"errors"
	"fmt"
	"unicode"

	"golang.org/x/crypto/bcrypt"

	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrWeakPassword       = errors.New("password does not meet the policy")
)

// UnusablePassword is stored for accounts created through an identity
// provider. No password matches it until the member sets one through a reset.
const UnusablePassword = "!"

// HashPassword bcrypts a plaintext password.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// CheckPassword reports whether password matches hash.
func CheckPassword(hash, password string) bool {
	return hash != "" && bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// PasswordPolicy is the subset of the security settings that governs passwords.
type PasswordPolicy struct {
	MinLength     int
	RequireStrong bool
}

// PolicyFromSettings reads the policy from the mess settings.
func PolicyFromSettings(s models.MessSettings) PasswordPolicy {
	return PasswordPolicy{MinLength: s.MinPasswordLength, RequireStrong: s.RequireStrongPasswords}
}

// Validate returns a wrapped ErrWeakPassword describing the first failed rule.
func (p PasswordPolicy) Validate(password string) error {
	minLen := p.MinLength
	if minLen <= 0 {
		minLen = 8
	}
	if len([]rune(password)) < minLen {
		return fmt.Errorf("%w: must be at least %d characters", ErrWeakPassword, minLen)
	}
	// bcrypt ignores everything past 72 bytes.
	if len(password) > 72 {
		return fmt.Errorf("%w: must be at most 72 bytes", ErrWeakPassword)
	}
	if !p.RequireStrong {
		return nil
	}
	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !upper || !lower || !digit {
		return fmt.Errorf("%w: must mix upper and lower case letters and digits", ErrWeakPassword)
	}
	return nil
}

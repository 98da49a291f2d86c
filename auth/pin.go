/*
Package auth covers the two credential surfaces: session tokens for API
access and the transaction PIN that gates withdrawal submission.

The PIN is a 4-digit secret stored only as a bcrypt hash on the user profile.
Verification failures are deliberately indistinct (wrong PIN, no PIN set)
so the error reveals nothing about the account.
*/
package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/ablelink/invest-engine/invest"
)

// pinHashCost matches the cost the platform has always used; existing hashes
// verify regardless.
const pinHashCost = 10

// HashPIN returns the bcrypt hash to store on the user profile.
func HashPIN(pin string) (string, error) {
	if len(pin) != 4 {
		return "", &invest.ValidationError{Field: "pin", Message: "PIN must be exactly 4 digits"}
	}
	for _, c := range pin {
		if c < '0' || c > '9' {
			return "", &invest.ValidationError{Field: "pin", Message: "PIN must be exactly 4 digits"}
		}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), pinHashCost)
	if err != nil {
		return "", fmt.Errorf("hash pin: %w", err)
	}
	return string(hash), nil
}

// VerifyPIN checks a submitted PIN against the stored hash. Any mismatch,
// including an empty stored hash, comes back as ErrAuthentication.
func VerifyPIN(storedHash, pin string) error {
	if storedHash == "" {
		return invest.ErrAuthentication
	}
	if err := bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(pin)); err != nil {
		return invest.ErrAuthentication
	}
	return nil
}

// HashPassword returns the bcrypt hash of an account password.
func HashPassword(password string) (string, error) {
	if len(password) < 6 {
		return "", &invest.ValidationError{Field: "password", Message: "password must be at least 6 characters"}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), pinHashCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword checks a login attempt. Mismatches are indistinct.
func VerifyPassword(storedHash, password string) error {
	if storedHash == "" {
		return invest.ErrAuthentication
	}
	if err := bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(password)); err != nil {
		return invest.ErrAuthentication
	}
	return nil
}

package services

import (
	"errors"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var (
	ErrPasswordTooShort  = errors.New("password must be at least 8 characters")
	ErrPasswordAllDigits = errors.New("password cannot be entirely numeric")
)

var passwordValidate = validator.New()

// ValidatePasswordStrength is the pluggable password policy applied at
// registration and password reset.
func ValidatePasswordStrength(password string) error {
	if err := passwordValidate.Var(password, "required,min=8"); err != nil {
		return ErrPasswordTooShort
	}
	if allDigits(password) {
		return ErrPasswordAllDigits
	}
	return nil
}

func allDigits(s string) bool {
	if strings.TrimSpace(s) == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// Package auth holds the credential primitives used by the login flow:
// password hashing and policy, opaque session tokens, CSRF tokens, signed
// challenge tokens, TOTP, backup codes, login lockout and role permissions.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/dmitrijs2005/hrkeeper/internal/common"
	"golang.org/x/crypto/bcrypt"
)

const (
	MinPasswordLength = 8
	// bcrypt ignores input beyond 72 bytes.
	MaxPasswordLength = 72
	bcryptCost        = 12
)

func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// CheckPassword reports whether password matches the bcrypt hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ValidatePassword enforces the password policy. All violations are
// reported together.
func ValidatePassword(password string) error {
	var errs []error
	if len(password) < MinPasswordLength {
		errs = append(errs, fmt.Errorf("must be at least %d characters", MinPasswordLength))
	}
	if len(password) > MaxPasswordLength {
		errs = append(errs, fmt.Errorf("must be at most %d bytes", MaxPasswordLength))
	}

	var lower, upper, digit, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			symbol = true
		}
	}
	if !lower {
		errs = append(errs, errors.New("must contain a lowercase letter"))
	}
	if !upper {
		errs = append(errs, errors.New("must contain an uppercase letter"))
	}
	if !digit {
		errs = append(errs, errors.New("must contain a digit"))
	}
	if !symbol {
		errs = append(errs, errors.New("must contain a symbol"))
	}

	if len(errs) == 0 {
		return nil
	}
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	return fmt.Errorf("%w: password %s", common.ErrorValidation, strings.Join(msgs, ", "))
}

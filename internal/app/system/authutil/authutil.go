// internal/app/system/authutil/authutil.go
package authutil

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Password length bounds. bcrypt silently truncates input beyond 72 bytes,
// so the upper bound mostly guards against abusive request bodies.
const (
	MinPasswordLength = 6
	MaxPasswordLength = 128
)

var (
	ErrPasswordTooShort = errors.New("password is too short")
	ErrPasswordTooLong  = errors.New("password is too long")
	ErrPasswordCommon   = errors.New("password is too common")
)

// commonPasswords is a small deny-list of passwords that show up at the top
// of every breach corpus. Checked case-insensitively.
var commonPasswords = map[string]struct{}{
	"123456":    {},
	"12345678":  {},
	"password":  {},
	"qwerty":    {},
	"abc123":    {},
	"iloveyou":  {},
	"letmein":   {},
	"football":  {},
	"welcome":   {},
	"monkey":    {},
	"dragon":    {},
	"sunshine":  {},
	"princess":  {},
	"trustno1":  {},
	"123456789": {},
}

// ValidatePassword checks a candidate password against the length bounds and
// the common-password deny-list. It returns one of the sentinel errors above,
// or nil when the password is acceptable.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if len(password) > MaxPasswordLength {
		return ErrPasswordTooLong
	}
	if _, common := commonPasswords[strings.ToLower(password)]; common {
		return ErrPasswordCommon
	}
	return nil
}

// PasswordRules returns a human-readable description of the password policy
// suitable for inclusion in an error response.
func PasswordRules() string {
	return fmt.Sprintf("Password must be %d-%d characters and not a commonly used password.",
		MinPasswordLength, MaxPasswordLength)
}

// HashPassword hashes a password using bcrypt with a cost of 12.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the stored bcrypt hash.
// Invalid or foreign hashes simply fail the check.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ValidEmail reports whether s is a plausible email address. This is a
// shape check (one @, non-empty local part, dotted domain), not a
// deliverability check.
func ValidEmail(s string) bool {
	return isValidEmail(s)
}

func isValidEmail(s string) bool {
	at := strings.Index(s, "@")
	if at <= 0 || at != strings.LastIndex(s, "@") {
		return false
	}
	domain := s[at+1:]
	dot := strings.Index(domain, ".")
	if dot <= 0 || strings.HasSuffix(domain, ".") {
		return false
	}
	return true
}

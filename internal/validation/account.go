package validation

import (
	"errors"
	"net/mail"
	"strings"
	"unicode/utf8"
)

var (
	ErrEmailRequired   = errors.New("email address is required")
	ErrEmailTooLong    = errors.New("email address is too long (max 254 characters)")
	ErrEmailFormat     = errors.New("invalid email address format")
	ErrPasswordShort   = errors.New("password must be at least 12 characters")
	ErrPasswordLong    = errors.New("password must not exceed 72 bytes")
	ErrPasswordCommon  = errors.New("password is too common, please choose a stronger one")
	ErrDisplayNameLong = errors.New("display name is too long (max 100 characters)")
)

// Substrings that make a password trivially guessable.
var commonPasswordPatterns = []string{
	"password", "123456", "qwerty", "admin", "letmein",
	"welcome", "monkey", "dragon", "master", "sunshine",
	"lifequest",
}

// ValidateEmail checks length and RFC 5322 syntax. The address must be bare,
// without a display name.
func ValidateEmail(email string) error {
	if email == "" {
		return ErrEmailRequired
	}
	if len(email) > 254 {
		return ErrEmailTooLong
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return ErrEmailFormat
	}
	return nil
}

// ValidatePassword enforces a 12 character minimum and blocks common
// patterns. bcrypt ignores everything past 72 bytes, so longer input is
// rejected rather than silently truncated.
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < 12 {
		return ErrPasswordShort
	}
	if len(password) > 72 {
		return ErrPasswordLong
	}

	lower := strings.ToLower(password)
	for _, pattern := range commonPasswordPatterns {
		if strings.Contains(lower, pattern) {
			return ErrPasswordCommon
		}
	}
	return nil
}

// ValidateDisplayName bounds an optional display name. Blank is allowed.
func ValidateDisplayName(name string) error {
	if utf8.RuneCountInString(strings.TrimSpace(name)) > 100 {
		return ErrDisplayNameLong
	}
	return nil
}

package validation

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// ValidateTitle validates a goal title
func ValidateTitle(title string) error {
	trimmed := strings.TrimSpace(title)

	if trimmed == "" {
		return errors.New("title is required")
	}

	if utf8.RuneCountInString(trimmed) > 200 {
		return errors.New("title is too long (max 200 characters)")
	}

	return nil
}

// ValidateDescription validates an optional goal description
func ValidateDescription(description string) error {
	if utf8.RuneCountInString(strings.TrimSpace(description)) > 2000 {
		return errors.New("description is too long (max 2000 characters)")
	}
	return nil
}

// ValidateReflection only bounds the length; emptiness is a progression rule.
func ValidateReflection(text string) error {
	if utf8.RuneCountInString(text) > 5000 {
		return errors.New("reflection is too long (max 5000 characters)")
	}
	return nil
}

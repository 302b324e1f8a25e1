package utils

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// String length limits
const (
	MaxUsernameLength = 64
	MinUsernameLength = 3
	MaxPasswordLength = 128
	MinPasswordLength = 6
	MaxEmailLength    = 255
	MaxContentLength  = 2000
	MaxPostLength     = 10000
	MaxAccountField   = 256
	MaxHashtagLength  = 64
	MaxHashtagCount   = 30
)

// Regular expressions for validation
var (
	// UsernamePattern allows alphanumeric, dots, hyphens and underscores
	UsernamePattern = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)
	// EmailPattern is a basic email validation
	EmailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

// ValidateString validates a string field with length and content checks
func ValidateString(value, fieldName string, minLen, maxLen int, required bool) error {
	if required && value == "" {
		return fmt.Errorf("%s is required", fieldName)
	}

	if value == "" && !required {
		return nil // Optional field, empty is OK
	}

	length := utf8.RuneCountInString(value)
	if length < minLen {
		return fmt.Errorf("%s must be at least %d characters", fieldName, minLen)
	}
	if length > maxLen {
		return fmt.Errorf("%s must not exceed %d characters", fieldName, maxLen)
	}

	// Null bytes never reach storage
	if strings.Contains(value, "\x00") {
		return fmt.Errorf("%s contains invalid characters", fieldName)
	}

	return nil
}

// ValidateUsername validates a username
func ValidateUsername(username string) error {
	if err := ValidateString(username, "username", MinUsernameLength, MaxUsernameLength, true); err != nil {
		return err
	}

	if !UsernamePattern.MatchString(username) {
		return fmt.Errorf("username contains invalid characters")
	}

	return nil
}

// ValidatePassword validates a password
func ValidatePassword(password string) error {
	return ValidateString(password, "password", MinPasswordLength, MaxPasswordLength, true)
}

// ValidateEmail validates an email address
func ValidateEmail(email string, required bool) error {
	if err := ValidateString(email, "email", 0, MaxEmailLength, required); err != nil {
		return err
	}

	if email != "" && !EmailPattern.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}

	return nil
}

// ValidateContent validates user supplied post text after sanitizing
func ValidateContent(content string, maxLen int) error {
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("content is required")
	}
	return ValidateString(content, "content", 1, maxLen, true)
}

// ValidateHashtags validates a hashtag list
func ValidateHashtags(tags []string) error {
	if len(tags) > MaxHashtagCount {
		return fmt.Errorf("too many hashtags (maximum %d)", MaxHashtagCount)
	}

	for i, tag := range tags {
		if err := ValidateString(tag, fmt.Sprintf("hashtags[%d]", i), 1, MaxHashtagLength, true); err != nil {
			return err
		}
	}

	return nil
}

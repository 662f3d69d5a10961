package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

var (
	// ErrInvalidInput indicates the input failed validation
	ErrInvalidInput = errors.New("invalid input")

	// Subjects are operator handles or emails, 3-100 chars
	subjectRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9@._+-]{2,99}$`)
)

// SanitizeString removes control characters and trims whitespace
func SanitizeString(input string) string {
	input = strings.TrimSpace(input)

	var builder strings.Builder
	for _, r := range input {
		if !unicode.IsControl(r) {
			builder.WriteRune(r)
		}
	}

	return builder.String()
}

// ValidateSubject checks an operator token subject and returns its sanitized form
func ValidateSubject(subject string) (string, error) {
	subject = SanitizeString(subject)

	if subject == "" {
		return "", fmt.Errorf("%w: subject cannot be empty", ErrInvalidInput)
	}

	if !subjectRegex.MatchString(subject) {
		return "", fmt.Errorf("%w: subject must be 3-100 characters of letters, digits and @._+-", ErrInvalidInput)
	}

	reserved := []string{"admin", "root", "system"}
	lower := strings.ToLower(subject)
	for _, r := range reserved {
		if lower == r {
			return "", fmt.Errorf("%w: subject %q is reserved", ErrInvalidInput, subject)
		}
	}

	return subject, nil
}

// ValidateSecret rejects HMAC secrets too short to sign operator tokens
func ValidateSecret(secret string) error {
	if len(secret) < 6 {
		return fmt.Errorf("%w: secret must be at least 6 characters", ErrInvalidInput)
	}
	return nil
}

package utils

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var nonDigit = regexp.MustCompile(`\D`)

// UUID Generation
func GenerateUUID() string {
	return uuid.NewString()
}

// TrimmedOrNil returns nil for blank strings so they are stored as NULL
func TrimmedOrNil(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

// StringValue dereferences s, returning "" for nil
func StringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// NormalizePhoneNumber strips formatting and guarantees a leading "+"
func NormalizePhoneNumber(phone string) string {
	cleaned := nonDigit.ReplaceAllString(phone, "")
	if cleaned == "" {
		return ""
	}
	return "+" + cleaned
}

// IsPlaceholder reports whether a config value is empty or an unfilled template value
func IsPlaceholder(value string) bool {
	value = strings.TrimSpace(value)
	return value == "" || strings.Contains(value, "your_") || strings.Contains(value, "_here")
}

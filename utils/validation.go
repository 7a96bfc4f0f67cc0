// utils/validation.go
package utils

import (
	"regexp"
	"strings"
)

var phoneRegex = regexp.MustCompile(`^[1-9]\d{7,14}$`)

// NormalizePhone strips formatting characters and the leading '+' so the
// number matches the digits-only E.164 form the WhatsApp Cloud API expects,
// e.g. "5511919941208".
func NormalizePhone(phone string) string {
	cleaned := strings.ReplaceAll(phone, " ", "")
	cleaned = strings.ReplaceAll(cleaned, "-", "")
	cleaned = strings.ReplaceAll(cleaned, "(", "")
	cleaned = strings.ReplaceAll(cleaned, ")", "")
	cleaned = strings.TrimPrefix(cleaned, "+")
	return cleaned
}

// ValidatePhone checks if a phone number is in a valid E.164 format
func ValidatePhone(phone string) bool {
	return phoneRegex.MatchString(NormalizePhone(phone))
}

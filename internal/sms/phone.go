// internal/sms/phone.go
package sms

import "strings"

// NormalizePhone formats a phone number to E.164. Ten-digit numbers are
// assumed to be North American.
func NormalizePhone(phone string) string {
	var cleaned strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			cleaned.WriteRune(r)
		}
	}
	digits := cleaned.String()

	switch {
	case len(digits) == 10:
		return "+1" + digits
	case len(digits) == 11 && strings.HasPrefix(digits, "1"):
		return "+" + digits
	case strings.HasPrefix(phone, "+"):
		return phone
	}
	return "+" + digits
}

// HasUsablePhone reports whether a raw phone value is worth sending to.
func HasUsablePhone(phone string) bool {
	return strings.TrimSpace(phone) != ""
}

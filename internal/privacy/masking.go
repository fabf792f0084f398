package privacy

import (
	"strings"
)

// MaskToken masks a bearer token showing only the last 4 characters.
func MaskToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 4 {
		return strings.Repeat("*", len(token))
	}
	return strings.Repeat("*", len(token)-4) + token[len(token)-4:]
}

// MaskEmail masks the local part of an email address.
// Example: "owner@example.com" -> "o****@example.com"
func MaskEmail(email string) string {
	if email == "" {
		return ""
	}

	at := strings.Index(email, "@")
	if at <= 0 {
		return strings.Repeat("*", len(email))
	}

	local := email[:at]
	domain := email[at:]
	if len(local) == 1 {
		return "*" + domain
	}
	return local[:1] + strings.Repeat("*", len(local)-1) + domain
}

// MaskPhone masks a phone number showing only the last 4 digits.
// Example: "+1234567890" -> "+******7890"
func MaskPhone(phone string) string {
	if phone == "" {
		return ""
	}

	if strings.HasPrefix(phone, "+") {
		if len(phone) <= 5 {
			return "+" + strings.Repeat("*", len(phone)-1)
		}
		return "+" + strings.Repeat("*", len(phone)-5) + phone[len(phone)-4:]
	}

	if len(phone) <= 4 {
		return strings.Repeat("*", len(phone))
	}
	return strings.Repeat("*", len(phone)-4) + phone[len(phone)-4:]
}

// ShortenID truncates an action or entity id for log output.
func ShortenID(id string, max int) string {
	if max <= 0 || len(id) <= max {
		return id
	}
	return id[:max] + "..."
}

package logger

import "strings"

const redacted = "[redacted]"

// RedactEmail masks an email address for safe logging.
// "john.doe@example.com" → "jo***@example.com"
// Short local parts (≤2 chars) are fully masked: "ab@example.com" → "***@example.com"
func RedactEmail(email string) string {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return "***@***"
	}
	name := parts[0]
	if len(name) > 2 {
		return name[:2] + "***@" + parts[1]
	}
	return "***@" + parts[1]
}

// Raw client addresses are never written to logs. Truncated prefixes and
// salted hashes are logged under their own keys.
func isAddressKey(key string) bool {
	switch key {
	case "ip", "client_ip", "remote_addr", "x_forwarded_for":
		return true
	}
	return false
}

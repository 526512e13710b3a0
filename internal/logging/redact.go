// Signboard - Device, Group, Shop and Video Link Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signboard

package logging

import (
	"regexp"
	"strings"
)

const maxMessageLen = 200

var bearerPattern = regexp.MustCompile(`(?i)(bearer\s+)([A-Za-z0-9._~+/=-]+)`)

// SanitizeToken masks a token, showing only the first and last 4 characters.
// Example: "eyJhbGciOiJSUzI1NiIsInR5cCI6IkpXVCJ9" -> "eyJh...VCJ9"
func SanitizeToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 12 {
		return "***"
	}
	return token[:4] + "..." + token[len(token)-4:]
}

// SanitizeMessage prepares a backend-supplied message for logging: bearer
// tokens echoed back by a backend are masked and the result is truncated.
func SanitizeMessage(msg string) string {
	msg = bearerPattern.ReplaceAllStringFunc(msg, func(m string) string {
		parts := bearerPattern.FindStringSubmatch(m)
		return parts[1] + SanitizeToken(parts[2])
	})
	return truncateString(msg, maxMessageLen)
}

// truncateString cuts s to at most maxLen bytes without splitting a rune.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return strings.ToValidUTF8(s[:maxLen], "") + "..."
}

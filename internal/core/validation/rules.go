// Package validation rejects obviously invalid form submissions before any
// backend call is made. The server re-validates everything; these checks are
// best-effort.
package validation

import (
	"regexp"
	"strings"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^(\+62|0)\d{8,12}$`)
)

// IsEmail reports whether s looks like local@domain.tld.
func IsEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// IsPhone reports whether s starts with +62 or 0 followed by 8-12 digits.
func IsPhone(s string) bool {
	return phonePattern.MatchString(s)
}

// IsBlank reports whether s is empty after trimming.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// EmailTaken reports whether email is already used by an item in items other
// than the one identified by excludeID. The comparison ignores case and
// surrounding whitespace. Only the loaded collection is consulted.
func EmailTaken[T any](items []T, email, excludeID string, emailOf, idOf func(T) string) bool {
	needle := strings.ToLower(strings.TrimSpace(email))
	if needle == "" {
		return false
	}
	for _, item := range items {
		if excludeID != "" && idOf(item) == excludeID {
			continue
		}
		if strings.ToLower(strings.TrimSpace(emailOf(item))) == needle {
			return true
		}
	}
	return false
}

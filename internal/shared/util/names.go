package util

import (
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// DateLayout is the wire and storage layout of birthdates.
const DateLayout = "2006-01-02"

// NormalizeName composes a person's name to NFC and collapses whitespace so
// that visually equal names compare equal.
func NormalizeName(raw string) string {
	return strings.Join(strings.Fields(norm.NFC.String(raw)), " ")
}

// ParseDate parses a YYYY-MM-DD date at UTC midnight.
func ParseDate(raw string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, strings.TrimSpace(raw), time.UTC)
}

// FormatDate renders a date pointer in DateLayout, or "" when nil.
func FormatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(DateLayout)
}

// OptionalText trims raw and returns nil when it is empty.
func OptionalText(raw string) *string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	return &s
}

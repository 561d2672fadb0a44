package models

import (
	"fmt"
	"time"
)

// FormatRelativeTime renders t relative to now for list displays:
// "just now", "5m ago", "2h ago", "3d ago", or the absolute date once
// the age exceeds a week. A zero t renders as an empty string.
func FormatRelativeTime(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}

	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return t.Format("2006-01-02")
	}
}

// Slugify turns a session name into a filesystem-safe slug: lowercase,
// spaces and underscores become dashes, everything outside [a-z0-9-]
// is dropped.
func Slugify(s string) string {
	var out []rune
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			out = append(out, r)
		case r >= 'A' && r <= 'Z':
			out = append(out, r+('a'-'A'))
		case r == ' ', r == '_':
			out = append(out, '-')
		}
	}
	return string(out)
}

// TruncateTitle shortens s to at most max runes, appending an ellipsis
// when truncation happened. Rune-safe so multi-byte names don't get cut
// mid-character.
func TruncateTitle(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max == 1 {
		return "…"
	}
	return string(runes[:max-1]) + "…"
}

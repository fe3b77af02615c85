package utils

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxUtteranceLength caps the text accepted from voice or typed input, in runes
const MaxUtteranceLength = 2000

var (
	emailRegex   = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	controlRegex = regexp.MustCompile(`[\x00-\x08\x0b\x0c\x0e-\x1f\x7f]`)
)

// IsValidEmail reports whether email looks like an address
func IsValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// SanitizeText strips control characters, trims whitespace and truncates to
// MaxUtteranceLength runes. Speech transcripts often carry stray control bytes.
func SanitizeText(s string) string {
	s = strings.TrimSpace(controlRegex.ReplaceAllString(s, ""))
	if utf8.RuneCountInString(s) <= MaxUtteranceLength {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:MaxUtteranceLength]))
}

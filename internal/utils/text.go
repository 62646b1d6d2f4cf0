package utils

import (
	"strings"
	"unicode/utf8"
)

// CleanUTF8 removes invalid UTF8 sequences and NUL bytes. The boolean
// reports whether anything was removed.
func CleanUTF8(input string) (string, bool) {
	needsCleaning := strings.Contains(input, "\x00") || !utf8.ValidString(input)

	if !needsCleaning {
		return input, false
	}

	cleaned := strings.ToValidUTF8(input, "")
	cleaned = strings.ReplaceAll(cleaned, "\x00", "")

	return cleaned, true
}

// CleanName prepares a provider supplied name for storage: valid UTF8,
// trimmed, inner whitespace collapsed.
func CleanName(input string) string {
	cleaned, _ := CleanUTF8(input)
	return strings.Join(strings.Fields(cleaned), " ")
}

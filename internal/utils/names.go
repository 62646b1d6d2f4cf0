package utils

import "strings"

// NamesMatch reports whether two artist names plausibly refer to the same
// artist. Rules are tried in order: case-insensitive equality, equality once
// a leading "the " is dropped, then substring containment either way.
//
// Containment is loose: "Goats" matches "The Mountain Goats".
func NamesMatch(a, b string) bool {
	left := strings.ToLower(strings.TrimSpace(a))
	right := strings.ToLower(strings.TrimSpace(b))

	if left == "" || right == "" {
		return left == right
	}

	if left == right {
		return true
	}

	if strings.TrimPrefix(left, "the ") == strings.TrimPrefix(right, "the ") {
		return true
	}

	return strings.Contains(left, right) || strings.Contains(right, left)
}

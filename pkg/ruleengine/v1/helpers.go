package ruleengine

import (
	"strings"
)

// containsAnyFold reports whether s contains any of the markers, ignoring case.
func containsAnyFold(s string, markers []string) bool {
	lower := strings.ToLower(s)
	for _, marker := range markers {
		if marker == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(marker)) {
			return true
		}
	}
	return false
}

// hasAnyPrefix reports whether any path starts with any of the prefixes.
// The comparison is a plain string prefix: "/tmpfoo" matches "/tmp".
func hasAnyPrefix(paths []string, prefixes []string) bool {
	for _, path := range paths {
		for _, prefix := range prefixes {
			if prefix != "" && strings.HasPrefix(path, prefix) {
				return true
			}
		}
	}
	return false
}

// containsAnySubstring reports whether any token contains any of the substrings.
func containsAnySubstring(tokens []string, substrings []string) bool {
	for _, token := range tokens {
		for _, sub := range substrings {
			if sub != "" && strings.Contains(token, sub) {
				return true
			}
		}
	}
	return false
}

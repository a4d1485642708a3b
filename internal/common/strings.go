package common

import "strings"

// UnknownStr is the String() fallback for out-of-range enum values.
const UnknownStr = "unknown"

// FoldKey returns the lookup key used for case-insensitive schema names.
func FoldKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

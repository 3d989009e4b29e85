package util

import (
	"crypto/sha256"
	"encoding/hex"
	"unicode/utf8"
)

// RuneLength counts characters rather than bytes so emoji-heavy posts are
// measured the way users see them.
func RuneLength(s string) int {
	return utf8.RuneCountInString(s)
}

// Preview returns the first n runes of s, with an ellipsis when truncated
func Preview(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + "…"
}

// Digest returns the hex SHA-256 of s
func Digest(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

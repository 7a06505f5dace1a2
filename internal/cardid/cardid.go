// Package cardid derives stable card identities from card content.
package cardid

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Normalize lowercases and trims each side, unifies line endings and joins
// the sides with a newline so "ab"+"c" and "a"+"bc" stay distinct.
func Normalize(front, back string) string {
	clean := func(s string) string {
		s = strings.ReplaceAll(s, "\r\n", "\n")
		return strings.ToLower(strings.TrimSpace(s))
	}
	return clean(front) + "\n" + clean(back)
}

// Hash returns the hex SHA-256 of the normalized card content.
func Hash(front, back string) string {
	sum := sha256.Sum256([]byte(Normalize(front, back)))
	return hex.EncodeToString(sum[:])
}

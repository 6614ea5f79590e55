package gallery

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Sanitize keeps ASCII letters and spaces and drops every other character.
// The result is safe to hand to a generator and to use in file names.
func Sanitize(prompt string) string {
	var b strings.Builder
	b.Grow(len(prompt))
	for _, r := range prompt {
		if r == ' ' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Hash is the lowercase hex SHA-256 of the UTF-8 bytes of s.
func Hash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// RequestHash is the output key of a raw prompt.
func RequestHash(prompt string) string {
	return Hash(Sanitize(prompt))
}

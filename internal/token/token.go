// Package token generates and validates the human-shareable split tokens.
package token

import (
	"crypto/rand"
	"fmt"
	"regexp"
)

// Length is the fixed token length.
const Length = 12

// Alphabet is the set of characters a token is drawn from.
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

var pattern = regexp.MustCompile(`^[A-Z0-9]{12}$`)

// limit is the largest multiple of len(Alphabet) that fits in a byte.
// Bytes at or above it are rejected so no character is over-represented.
const limit = 256 - 256%len(Alphabet)

// New returns a fresh 12-character token drawn uniformly from Alphabet
// using crypto/rand. Uniqueness against a store is the caller's job.
func New() (string, error) {
	out := make([]byte, 0, Length)
	buf := make([]byte, Length)
	for {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("read random bytes: %w", err)
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			out = append(out, Alphabet[int(b)%len(Alphabet)])
			if len(out) == Length {
				return string(out), nil
			}
		}
	}
}

// Valid reports whether s is a well-formed share token.
func Valid(s string) bool {
	return pattern.MatchString(s)
}

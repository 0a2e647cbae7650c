package domain

import (
	"crypto/rand"
	"encoding/hex"
	"regexp"
)

// nativeIDWidth is the fixed width of a native identifier in hex characters.
const nativeIDWidth = 24

var nativeIDPattern = regexp.MustCompile(`^[0-9a-f]{24}$`)

// NewID generates a native identifier: 12 random bytes, hex encoded.
func NewID() string {
	buf := make([]byte, nativeIDWidth/2)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms
		panic(err)
	}
	return hex.EncodeToString(buf)
}

// IsNativeID reports whether s is syntactically a native identifier.
// Human-readable identifiers never match this format, so classification
// decides which lookup a caller-supplied identifier is dispatched to.
func IsNativeID(s string) bool {
	return len(s) == nativeIDWidth && nativeIDPattern.MatchString(s)
}

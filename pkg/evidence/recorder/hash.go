package recorder

import (
	"crypto/sha256"
	"encoding/hex"
)

// MaxHashSize caps the number of bytes hashed from large content.
// Long transcripts are hashed on their first 1MB only, which keeps hashing
// bounded while preserving integrity verification for realistic utterances.
const MaxHashSize = 1024 * 1024 // 1MB

// HashString computes the hex-encoded SHA-256 of a string.
// Returns an empty string for empty content.
func HashString(content string) string {
	if content == "" {
		return ""
	}

	data := []byte(content)
	if len(data) > MaxHashSize {
		data = data[:MaxHashSize]
	}

	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

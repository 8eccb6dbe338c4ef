package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Key builds a cache key from the prefix and the SHA-256 of the parts.
// Parts are JSON encoded first, so that ("a", "bc") and ("ab", "c")
// give different keys.
func Key(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	return prefix + Hash(data)
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

package utils

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash returns the hex SHA-256 digest of input. Sessions are stored under
// the hash of their token, never the token itself.
func Hash(input string) string {
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}

package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// hashKey builds a namespaced cache key of the form prefix:sha256(parts).
// The keyer calls it with the plan, bounds, and render prefixes so one
// instance hash fans out into separate entries per concern, and the full
// 256-bit digest keeps distinct option sets from ever colliding.
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(sum[:]))
}

// Hash returns the hex SHA-256 of data. Instance and plan identities are
// derived from their canonical JSON through this, so byte-identical inputs
// share cache entries.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

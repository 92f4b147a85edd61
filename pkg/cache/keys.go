package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// hashKey generates a cache key by hashing the components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	// Full SHA-256 (64 hex chars) to prevent collisions
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// HTMLKey builds the cache key for a rendered page. The key covers the full
// page content plus the active tag filter, so any block edit or filter
// change produces a distinct key.
func HTMLKey(pageJSON []byte, activeTags []string) string {
	return hashKey("html", Hash(pageJSON), activeTags)
}

// DiagramKey builds the cache key for a rendered diagram SVG from its DOT
// source.
func DiagramKey(dot string) string {
	return hashKey("diagram", dot)
}

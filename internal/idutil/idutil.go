// Package idutil generates short hash IDs for runs and checks.
package idutil

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// RunID generates an ID for a suite run.
// Uses the suite name and start timestamp for uniqueness.
// Format: run_XXXXXXXX
func RunID(suiteName string) string {
	data := fmt.Sprintf("%s:%d", suiteName, time.Now().UnixNano())
	return hashID("run", data)
}

// CheckID generates a stable ID for a check within a suite.
// Format: chk_XXXXXXXX
func CheckID(suiteName string, index int) string {
	data := fmt.Sprintf("%s:%d", suiteName, index)
	return hashID("chk", data)
}

// hashID creates a short hash-based ID with the given prefix.
// Format: {prefix}_{first 8 hex chars of SHA256}
func hashID(prefix, data string) string {
	hash := sha256.Sum256([]byte(data))
	hexHash := hex.EncodeToString(hash[:])
	return fmt.Sprintf("%s_%s", prefix, hexHash[:8])
}

// IsValidID checks if an ID matches the expected prefix format.
func IsValidID(id, prefix string) bool {
	if len(id) < len(prefix)+1 {
		return false
	}
	return id[:len(prefix)] == prefix && id[len(prefix)] == '_'
}

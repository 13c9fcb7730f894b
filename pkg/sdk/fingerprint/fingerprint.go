// Package fingerprint produces stable grouping keys for error dedup.
//
// Visually similar but textually distinct stack traces collapse under
// one incident when their (kind, service, endpoint) triple matches.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash returns a deterministic 16-character lowercase hex key for the
// given triple. Empty inputs are valid and hash like any other value.
// Truncation collisions are accepted grouping noise.
func Hash(kind, service, endpoint string) string {
	sum := sha256.Sum256([]byte(kind + "\x00" + service + "\x00" + endpoint))
	return hex.EncodeToString(sum[:8])
}

package check

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// KeyFingerprint returns a short stable fingerprint of a key, safe to log
// and echo where the raw key must never appear.
func KeyFingerprint(key string) string {
	sum := blake3.Sum256([]byte(key))
	return hex.EncodeToString(sum[:8])
}

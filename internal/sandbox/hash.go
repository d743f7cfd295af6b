package sandbox

import (
	"crypto/sha256"
	"encoding/hex"
)

// hashStrings returns the first 16 hex characters (64 bits) of the SHA256 of
// parts. Each part is followed by a NUL separator so that ("ab","c") and
// ("a","bc") hash differently.
func hashStrings(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p)) // hash.Hash.Write never returns an error
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}

package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// digest returns the hex SHA-256 of fields joined by NUL bytes, so
// ("ab", "c") and ("a", "bc") differ.
func digest(fields ...string) string {
	h := sha256.New()
	for i, f := range fields {
		if i > 0 {
			h.Write([]byte{0})
		}
		h.Write([]byte(f))
	}
	return hex.EncodeToString(h.Sum(nil))
}

package util

import (
	"crypto/sha1"
	"encoding/hex"
)

// HashString gives a stable hex id for rows that lack a native one.
func HashString(s string) string {
	sum := sha1.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

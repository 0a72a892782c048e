package core

import (
	"crypto/sha256"
	"encoding/hex"
)

// DeriveKey derives the token signing key from a static passphrase. The key
// is the hex encoding of SHA-256(passphrase): 64 bytes, recomputed
// identically on every process start so tokens survive restarts as long as
// the passphrase is stable.
func DeriveKey(passphrase string) []byte {
	sum := sha256.Sum256([]byte(passphrase))
	return []byte(hex.EncodeToString(sum[:]))
}

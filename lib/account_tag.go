package lib

import (
	"crypto/sha256"
	"encoding/hex"
)

// AccountTag returns a stable filesystem-safe identifier for an account.
// Account IDs are email addresses, which make poor directory names.
func AccountTag(accountID string) string {
	hasher := sha256.New()
	hasher.Write([]byte(accountID))
	hasher.Write([]byte("\n"))
	return hex.EncodeToString(hasher.Sum(nil))[:16]
}

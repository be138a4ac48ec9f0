package store

import (
	"crypto/sha256"
	"encoding/hex"
)

// KeyPrefix namespaces revocation entries in the shared keyspace.
const KeyPrefix = "blacklist:"

// revokedMarker is the sentinel value stored under a revocation key.
const revokedMarker = "revoked"

// revocationKey derives the storage key for token. Tokens are hashed so
// that credentials never sit in the cache in plain form.
func revocationKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return KeyPrefix + hex.EncodeToString(sum[:])
}

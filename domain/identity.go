package domain

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// DigestIdentity hashes a client identity (IP or fingerprint) before
// it is stored or used as a persistence key, so raw addresses never
// land on disk. The sentinel and empty identities pass through
// unchanged.
func DigestIdentity(identity string) string {
	if identity == "" || identity == UnknownIdentity {
		return identity
	}
	sum := blake2b.Sum256([]byte(identity))
	return hex.EncodeToString(sum[:16])
}

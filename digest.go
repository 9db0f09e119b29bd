package jarscan

import (
	"encoding/hex"

	"github.com/opencontainers/go-digest"
	"github.com/zeebo/blake3"
)

// BLAKE3 is the algorithm name used for digests produced by BLAKE3Digester.
const BLAKE3 digest.Algorithm = "blake3"

// Digester fingerprints archive content. The same input must always
// produce the same digest. Implementations must be safe for concurrent use.
type Digester interface {
	Digest(data []byte) digest.Digest
}

// DigesterFunc adapts a function to Digester.
type DigesterFunc func(data []byte) digest.Digest

// Digest calls f(data).
func (f DigesterFunc) Digest(data []byte) digest.Digest {
	return f(data)
}

// SHA256Digester computes SHA-256 digests. It is the default.
var SHA256Digester Digester = DigesterFunc(digest.FromBytes)

// BLAKE3Digester computes 256-bit BLAKE3 digests.
var BLAKE3Digester Digester = DigesterFunc(func(data []byte) digest.Digest {
	sum := blake3.Sum256(data)
	return digest.NewDigestFromEncoded(BLAKE3, hex.EncodeToString(sum[:]))
})

// DigesterFor returns the digester for a named algorithm ("sha256" or
// "blake3"), or false if the name is unknown.
func DigesterFor(algorithm string) (Digester, bool) {
	switch digest.Algorithm(algorithm) {
	case digest.SHA256, "":
		return SHA256Digester, true
	case BLAKE3:
		return BLAKE3Digester, true
	default:
		return nil, false
	}
}

package sr25519

import (
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// ChainCode is the 32-byte value mixed into a hard derivation step.
type ChainCode [ChainCodeSize]byte

// NewChainCode computes the chain code for an encoded junction.
//
// Junctions of up to ChainCodeSize bytes are copied verbatim into a zeroed
// buffer; longer junctions are replaced by their unkeyed BLAKE2b-256 digest.
// The threshold and the split are fixed by the Substrate derivation scheme.
func NewChainCode(junction []byte) ChainCode {
	var cc ChainCode
	if len(junction) > ChainCodeSize {
		return ChainCode(blake2b.Sum256(junction))
	}
	copy(cc[:], junction)
	return cc
}

// DeriveHard derives a child key from k along a hard junction. The junction
// must already be encoded (see package junction).
//
// The child never inherits the mock RNG; it keeps k's signing context.
func (k *KeyMaterial) DeriveHard(junction []byte) *KeyMaterial {
	cc := NewChainCode(junction)

	mini, _, err := k.secret.HardDeriveMiniSecretKey([]byte{}, cc)
	if err != nil {
		panic(fmt.Sprintf("sr25519: hard derivation: %v", err))
	}

	return fromMiniSecret(mini, k.context)
}

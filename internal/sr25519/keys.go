// Package sr25519 implements the key material, hard derivation, signing and
// verification used by the wallet bridge.
//
// Keys follow the Substrate conventions: a 32-byte mini secret is expanded in
// Ed25519 mode, children are derived with hard junctions only, and signatures
// are Schnorr signatures over Ristretto255 bound to a signing context
// (SigningContext by default).
package sr25519

import (
	"crypto"
	"encoding/hex"
	"fmt"
	"io"

	schnorrkel "github.com/ChainSafe/go-schnorrkel"
	"github.com/gtank/ristretto255"
)

const (
	// SeedSize is the length of a mini secret key seed.
	SeedSize = 32
	// PublicKeySize is the length of a compressed Ristretto255 public key.
	PublicKeySize = 32
	// ChainCodeSize is the length of a hard derivation chain code.
	ChainCodeSize = 32
	// SignatureSize is the length of an encoded signature.
	SignatureSize = 64
)

// SigningContext is the signing context label used by Substrate chains.
const SigningContext = "substrate"

// PublicKey is the encoded public half of a KeyMaterial.
type PublicKey [PublicKeySize]byte

// Bytes returns a copy of the key bytes.
func (p PublicKey) Bytes() []byte {
	out := make([]byte, PublicKeySize)
	copy(out, p[:])
	return out
}

func (p PublicKey) String() string {
	return hex.EncodeToString(p[:])
}

func (p PublicKey) MarshalText() ([]byte, error) {
	out := make([]byte, hex.EncodedLen(PublicKeySize))
	hex.Encode(out, p[:])
	return out, nil
}

func (p *PublicKey) UnmarshalText(in []byte) error {
	if len(in) != hex.EncodedLen(PublicKeySize) {
		return ErrBadKeyLen
	}
	_, err := hex.Decode(p[:], in)
	return err
}

// Verify reports whether signature is a valid signature of message under the
// default signing context.
func (p PublicKey) Verify(message, signature []byte) bool {
	return VerifyWithPublicKey(p, []byte(SigningContext), signature, message)
}

// KeyMaterial is an expanded sr25519 keypair.
//
// A KeyMaterial can only be obtained from a seed or by deriving from another
// KeyMaterial, so it is always internally consistent. Values are never mutated
// after construction and may be shared between goroutines.
type KeyMaterial struct {
	secret  *schnorrkel.SecretKey
	scalar  *ristretto255.Scalar
	public  *schnorrkel.PublicKey
	encoded PublicKey
	context []byte

	// deterministic switches signing entropy to a fixed counter sequence.
	// Only WithMockRNGForTesting sets it.
	deterministic bool
}

var _ crypto.Signer = (*KeyMaterial)(nil)

// MustSeed converts b to a seed and panics if it is not exactly SeedSize bytes.
// It is meant for byte-slice boundaries where a wrong length is a caller bug.
func MustSeed(b []byte) [SeedSize]byte {
	if len(b) != SeedSize {
		panic(fmt.Sprintf("sr25519: seed must be %d bytes, got %d", SeedSize, len(b)))
	}
	var seed [SeedSize]byte
	copy(seed[:], b)
	return seed
}

// FromSeed expands seed into a production KeyMaterial bound to SigningContext.
func FromSeed(seed [SeedSize]byte) *KeyMaterial {
	return FromSeedWithContext(seed, []byte(SigningContext))
}

// FromSeedWithContext expands seed into a KeyMaterial that signs and verifies
// under the given signing context.
func FromSeedWithContext(seed [SeedSize]byte, context []byte) *KeyMaterial {
	mini, err := schnorrkel.NewMiniSecretKeyFromRaw(seed)
	if err != nil {
		panic(fmt.Sprintf("sr25519: invalid mini secret: %v", err))
	}
	return fromMiniSecret(mini, context)
}

func fromMiniSecret(mini *schnorrkel.MiniSecretKey, context []byte) *KeyMaterial {
	secret := mini.ExpandEd25519()

	pub, err := secret.Public()
	if err != nil {
		panic(fmt.Sprintf("sr25519: public key from expanded secret: %v", err))
	}

	raw := secret.Encode()
	scalar := ristretto255.NewScalar()
	if err := scalar.Decode(raw[:]); err != nil {
		panic(fmt.Sprintf("sr25519: expanded secret is not a canonical scalar: %v", err))
	}

	ctx := make([]byte, len(context))
	copy(ctx, context)

	return &KeyMaterial{
		secret:  secret,
		scalar:  scalar,
		public:  pub,
		encoded: PublicKey(pub.Encode()),
		context: ctx,
	}
}

// PublicKey returns the encoded public key.
func (k *KeyMaterial) PublicKey() PublicKey {
	return k.encoded
}

// Public implements crypto.Signer.
func (k *KeyMaterial) Public() crypto.PublicKey {
	return k.encoded
}

// Context returns a copy of the signing context the key is bound to.
func (k *KeyMaterial) Context() []byte {
	out := make([]byte, len(k.context))
	copy(out, k.context)
	return out
}

// DeterministicSigning reports whether the key signs with the mock RNG.
func (k *KeyMaterial) DeterministicSigning() bool {
	return k.deterministic
}

// WithMockRNGForTesting returns a copy of k whose signatures use a fixed
// counter sequence instead of crypto/rand, which makes them reproducible.
//
// Never use this outside tests: the resulting signatures leak information
// about the secret key to anyone who can observe several of them.
func (k *KeyMaterial) WithMockRNGForTesting() *KeyMaterial {
	clone := *k
	clone.deterministic = true
	return &clone
}

// Sign implements crypto.Signer. The message is signed as-is; rand and opts are
// ignored because the key carries its own entropy source.
func (k *KeyMaterial) Sign(_ io.Reader, message []byte, _ crypto.SignerOpts) ([]byte, error) {
	sig := k.SignMessage(message)
	return sig[:], nil
}

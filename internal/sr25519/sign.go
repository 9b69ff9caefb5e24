package sr25519

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"

	schnorrkel "github.com/ChainSafe/go-schnorrkel"
	"github.com/gtank/ristretto255"
	"golang.org/x/crypto/blake2b"
)

// Signature is an encoded sr25519 signature: R followed by s, with the high
// bit of the last byte set to mark it as a schnorrkel signature.
type Signature [SignatureSize]byte

// Bytes returns a copy of the signature bytes.
func (s Signature) Bytes() []byte {
	out := make([]byte, SignatureSize)
	copy(out, s[:])
	return out
}

func (s Signature) String() string {
	return hex.EncodeToString(s[:])
}

// SignatureFromBytes copies b into a Signature. It only checks the length;
// structural validity is checked during verification.
func SignatureFromBytes(b []byte) (Signature, error) {
	var sig Signature
	if len(b) != SignatureSize {
		return sig, fmt.Errorf("%w: want %d, got %d", ErrBadSignatureLen, SignatureSize, len(b))
	}
	copy(sig[:], b)
	return sig, nil
}

// SignMessage signs message under the key's signing context.
//
// Production keys draw the witness randomness from crypto/rand, so signing
// the same message twice yields different signatures. Keys returned by
// WithMockRNGForTesting produce identical signatures for identical input.
func (k *KeyMaterial) SignMessage(message []byte) Signature {
	t := schnorrkel.NewSigningContext(k.context, message)
	t.AppendMessage([]byte("proto-name"), []byte("Schnorr-sig"))
	t.AppendMessage([]byte("sign:pk"), k.encoded[:])

	r := k.witness(message, k.entropy())
	R := ristretto255.NewElement().ScalarBaseMult(r)
	encodedR := R.Encode(nil)
	t.AppendMessage([]byte("sign:R"), encodedR)

	c := ristretto255.NewScalar().FromUniformBytes(t.ExtractBytes([]byte("sign:c"), 64))
	s := ristretto255.NewScalar().Multiply(c, k.scalar)
	s.Add(s, r)

	var sig Signature
	copy(sig[:32], encodedR)
	copy(sig[32:], s.Encode(nil))
	sig[SignatureSize-1] |= 0x80
	return sig
}

// witness derives the per-signature nonce scalar from the secret, the signed
// input and 32 bytes read from rng.
func (k *KeyMaterial) witness(message []byte, rng io.Reader) *ristretto255.Scalar {
	var extra [32]byte
	if _, err := io.ReadFull(rng, extra[:]); err != nil {
		panic(fmt.Sprintf("sr25519: reading signing randomness: %v", err))
	}

	h, err := blake2b.New512(nil)
	if err != nil {
		panic(err)
	}
	writeField(h, []byte("signing"))
	writeField(h, k.scalar.Encode(nil))
	writeField(h, k.context)
	writeField(h, message)
	writeField(h, extra[:])

	return ristretto255.NewScalar().FromUniformBytes(h.Sum(nil))
}

func writeField(w io.Writer, b []byte) {
	var n [8]byte
	binary.LittleEndian.PutUint64(n[:], uint64(len(b)))
	w.Write(n[:])
	w.Write(b)
}

// Verify reports whether signature is a valid signature of message by k under
// k's signing context. Malformed signatures are reported as invalid.
func (k *KeyMaterial) Verify(signature, message []byte) bool {
	return verify(k.public, k.context, signature, message)
}

// VerifyWithPublicKey is Verify for a bare public key and explicit context.
func VerifyWithPublicKey(pub PublicKey, context, signature, message []byte) bool {
	pk, err := schnorrkel.NewPublicKey(pub)
	if err != nil {
		return false
	}
	return verify(pk, context, signature, message)
}

func verify(pk *schnorrkel.PublicKey, context, signature, message []byte) (ok bool) {
	// Verification is a predicate over untrusted bytes; it never panics.
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()

	if len(signature) != SignatureSize {
		return false
	}
	var raw [SignatureSize]byte
	copy(raw[:], signature)

	sig := new(schnorrkel.Signature)
	if err := sig.Decode(raw); err != nil {
		return false
	}

	valid, err := pk.Verify(sig, schnorrkel.NewSigningContext(context, message))
	return err == nil && valid
}

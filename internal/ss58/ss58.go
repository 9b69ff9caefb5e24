// Package ss58 encodes sr25519 public keys as SS58 account addresses.
package ss58

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/blake2b"

	"sr25519-bridge/internal/sr25519"
)

const (
	// PolkadotPrefix is the network prefix of Polkadot mainnet.
	PolkadotPrefix uint16 = 0
	// KusamaPrefix is the network prefix of Kusama.
	KusamaPrefix uint16 = 2
	// SubstratePrefix is the generic prefix, also used by Westend.
	SubstratePrefix uint16 = 42

	// MaxPrefix is the largest prefix representable in the two-byte form.
	MaxPrefix uint16 = 16383

	checksumSize = 2
)

var checksumPreimage = []byte("SS58PRE")

var (
	ErrInvalidAddress   = errors.New("invalid ss58 address")
	ErrChecksumMismatch = errors.New("ss58 checksum mismatch")
	ErrInvalidPrefix    = errors.New("invalid ss58 prefix")
)

// Encode returns the SS58 address of pub on the network identified by prefix.
func Encode(pub sr25519.PublicKey, prefix uint16) (string, error) {
	ident, err := encodePrefix(prefix)
	if err != nil {
		return "", err
	}

	payload := append(ident, pub[:]...)
	sum := checksum(payload)
	return base58.Encode(append(payload, sum[:checksumSize]...)), nil
}

// Decode parses an SS58 address into its public key and network prefix.
func Decode(address string) (sr25519.PublicKey, uint16, error) {
	var pub sr25519.PublicKey

	raw, err := base58.Decode(address)
	if err != nil {
		return pub, 0, fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}
	if len(raw) == 0 {
		return pub, 0, ErrInvalidAddress
	}

	prefix, prefixLen, err := decodePrefix(raw)
	if err != nil {
		return pub, 0, err
	}
	if len(raw) != prefixLen+sr25519.PublicKeySize+checksumSize {
		return pub, 0, fmt.Errorf("%w: unexpected length %d", ErrInvalidAddress, len(raw))
	}

	payload := raw[:len(raw)-checksumSize]
	sum := checksum(payload)
	if !bytes.Equal(sum[:checksumSize], raw[len(raw)-checksumSize:]) {
		return pub, 0, ErrChecksumMismatch
	}

	copy(pub[:], payload[prefixLen:])
	return pub, prefix, nil
}

func checksum(payload []byte) [blake2b.Size]byte {
	return blake2b.Sum512(append(append([]byte{}, checksumPreimage...), payload...))
}

func encodePrefix(prefix uint16) ([]byte, error) {
	switch {
	case prefix < 64:
		return []byte{byte(prefix)}, nil
	case prefix <= MaxPrefix:
		first := byte((prefix&0b0000_0000_1111_1100)>>2) | 0b0100_0000
		second := byte(prefix>>8) | byte(prefix&0b0000_0000_0000_0011)<<6
		return []byte{first, second}, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidPrefix, prefix)
	}
}

func decodePrefix(raw []byte) (uint16, int, error) {
	switch {
	case raw[0] < 64:
		return uint16(raw[0]), 1, nil
	case raw[0] < 128:
		if len(raw) < 2 {
			return 0, 0, ErrInvalidAddress
		}
		lower := raw[0]<<2 | raw[1]>>6
		upper := raw[1] & 0b0011_1111
		return uint16(lower) | uint16(upper)<<8, 2, nil
	default:
		return 0, 0, fmt.Errorf("%w: reserved prefix byte %d", ErrInvalidPrefix, raw[0])
	}
}

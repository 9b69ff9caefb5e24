// Package mnemonic turns BIP-39 phrases into sr25519 mini secret seeds using
// the substrate-bip39 scheme: the PBKDF2 input is the phrase entropy, not the
// phrase itself, so seeds differ from plain BIP-39 seeds.
package mnemonic

import (
	"crypto/sha512"
	"errors"
	"fmt"
	"strings"

	"github.com/tyler-smith/go-bip39"
	"golang.org/x/crypto/pbkdf2"

	"sr25519-bridge/internal/sr25519"
)

const pbkdf2Rounds = 2048

// DevPhrase is the well-known development phrase used by Substrate tooling.
const DevPhrase = "bottom drive obey lake curtain smoke basket hold race lonely fit walk"

var (
	ErrInvalidMnemonic      = errors.New("invalid mnemonic")
	ErrUnsupportedWordCount = errors.New("unsupported word count")
)

var entropyBits = map[int]int{
	12: 128,
	15: 160,
	18: 192,
	21: 224,
	24: 256,
}

// Generate returns a fresh phrase with the given number of words.
func Generate(words int) (string, error) {
	bitSize, ok := entropyBits[words]
	if !ok {
		return "", fmt.Errorf("%w: %d", ErrUnsupportedWordCount, words)
	}
	entropy, err := bip39.NewEntropy(bitSize)
	if err != nil {
		return "", fmt.Errorf("failed to generate entropy: %w", err)
	}
	phrase, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", fmt.Errorf("failed to build mnemonic: %w", err)
	}
	return phrase, nil
}

// Valid reports whether phrase is a valid BIP-39 English mnemonic.
func Valid(phrase string) bool {
	return bip39.IsMnemonicValid(normalize(phrase))
}

// ToSeed derives the mini secret seed for phrase and an optional password.
func ToSeed(phrase, password string) ([sr25519.SeedSize]byte, error) {
	var seed [sr25519.SeedSize]byte

	entropy, err := bip39.EntropyFromMnemonic(normalize(phrase))
	if err != nil {
		return seed, fmt.Errorf("%w: %w", ErrInvalidMnemonic, err)
	}

	key := pbkdf2.Key(entropy, []byte("mnemonic"+password), pbkdf2Rounds, 64, sha512.New)
	copy(seed[:], key[:sr25519.SeedSize])
	return seed, nil
}

func normalize(phrase string) string {
	return strings.Join(strings.Fields(phrase), " ")
}

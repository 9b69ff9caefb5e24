// Package suri parses Substrate secret URIs of the form
//
//	<phrase or 0x-hex seed>[//hard/soft...][///password]
//
// and turns them into sr25519 key material.
package suri

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"sr25519-bridge/internal/junction"
	"sr25519-bridge/internal/mnemonic"
	"sr25519-bridge/internal/sr25519"
)

var (
	ErrInvalidURI                = errors.New("invalid secret uri")
	ErrSoftDerivationUnsupported = errors.New("soft derivation is not supported")
)

// URI is a parsed secret URI. Phrase holds either a mnemonic or a 0x-prefixed
// hex seed.
type URI struct {
	Phrase    string
	Path      []junction.Junction
	Password  string
	HasSecret bool
}

// Parse splits s into its phrase, derivation path and password. An empty
// phrase selects mnemonic.DevPhrase, so "//Alice" is accepted.
func Parse(s string) (*URI, error) {
	u := &URI{}

	if i := strings.Index(s, "///"); i >= 0 {
		u.Password = s[i+3:]
		s = s[:i]
	}

	pathStart := strings.Index(s, "/")
	if pathStart < 0 {
		pathStart = len(s)
	}
	u.Phrase = strings.TrimSpace(s[:pathStart])
	u.HasSecret = u.Phrase != ""
	if !u.HasSecret {
		u.Phrase = mnemonic.DevPhrase
	}

	path, err := junction.Parse(s[pathStart:])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidURI, err)
	}
	u.Path = path
	return u, nil
}

// Seed returns the root mini secret the URI refers to.
func (u *URI) Seed() ([sr25519.SeedSize]byte, error) {
	if strings.HasPrefix(u.Phrase, "0x") {
		var seed [sr25519.SeedSize]byte
		raw, err := hex.DecodeString(u.Phrase[2:])
		if err != nil {
			return seed, fmt.Errorf("%w: bad hex seed: %w", ErrInvalidURI, err)
		}
		if len(raw) != sr25519.SeedSize {
			return seed, fmt.Errorf("%w: hex seed must be %d bytes, got %d", ErrInvalidURI, sr25519.SeedSize, len(raw))
		}
		copy(seed[:], raw)
		return seed, nil
	}
	return mnemonic.ToSeed(u.Phrase, u.Password)
}

// KeyMaterial builds the root key and applies every junction of the path.
func (u *URI) KeyMaterial(context []byte) (*sr25519.KeyMaterial, error) {
	for _, j := range u.Path {
		if !j.Hard {
			return nil, fmt.Errorf("%w: %s", ErrSoftDerivationUnsupported, j)
		}
	}

	seed, err := u.Seed()
	if err != nil {
		return nil, err
	}

	key := sr25519.FromSeedWithContext(seed, context)
	for _, j := range u.Path {
		key = key.DeriveHard(j.Encoded)
	}
	return key, nil
}

// Derive is a shorthand for Parse followed by KeyMaterial with the default
// signing context.
func Derive(s string) (*sr25519.KeyMaterial, error) {
	u, err := Parse(s)
	if err != nil {
		return nil, err
	}
	return u.KeyMaterial([]byte(sr25519.SigningContext))
}

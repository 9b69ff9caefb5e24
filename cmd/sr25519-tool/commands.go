package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli/v2"

	"sr25519-bridge/internal/bridge"
	"sr25519-bridge/internal/mnemonic"
	"sr25519-bridge/internal/sr25519"
	"sr25519-bridge/internal/ss58"
	"sr25519-bridge/internal/suri"
)

var errInvalidSignature = errors.New("signature is not valid")

var (
	suriFlag = &cli.StringFlag{
		Name:     "suri",
		Usage:    "secret URI, e.g. \"//Alice\" or \"<phrase>//hard///password\"",
		Required: true,
	}
	messageFlag = &cli.StringFlag{
		Name:  "message",
		Usage: "message to sign or verify; 0x-prefixed values are decoded as hex",
	}
	prefixFlag = &cli.IntFlag{
		Name:  "ss58-prefix",
		Usage: "network prefix for printed addresses (default from config)",
		Value: -1,
	}
)

var generateCommand = &cli.Command{
	Name:  "generate",
	Usage: "Generate a new mnemonic and the key it expands to",
	Flags: []cli.Flag{
		&cli.IntFlag{Name: "words", Usage: "mnemonic length (12, 15, 18, 21 or 24)", Value: 12},
		prefixFlag,
	},
	Action: func(cCtx *cli.Context) error {
		cfg := configFrom(cCtx)

		phrase, err := mnemonic.Generate(cCtx.Int("words"))
		if err != nil {
			return err
		}
		seed, err := mnemonic.ToSeed(phrase, "")
		if err != nil {
			return err
		}
		key := sr25519.FromSeedWithContext(seed, []byte(cfg.Bridge.SigningContext))

		w := cCtx.App.Writer
		fmt.Fprintf(w, "Secret phrase:    %s\n", phrase)
		fmt.Fprintf(w, "Secret seed:      0x%s\n", hex.EncodeToString(seed[:]))
		return printPublic(cCtx, w, key.PublicKey())
	},
}

var inspectCommand = &cli.Command{
	Name:  "inspect",
	Usage: "Show the public key and address behind a secret URI",
	Flags: []cli.Flag{suriFlag, prefixFlag},
	Action: func(cCtx *cli.Context) error {
		r, err := newRegistry(cCtx)
		if err != nil {
			return err
		}
		h, err := handleFromURI(r, cCtx.String(suriFlag.Name))
		if err != nil {
			return err
		}
		defer r.Destroy(h)

		pub, err := r.PublicKey(h)
		if err != nil {
			return err
		}
		return printPublic(cCtx, cCtx.App.Writer, pub)
	},
}

var deriveCommand = &cli.Command{
	Name:  "derive",
	Usage: "Hard-derive from a raw seed with pre-encoded junctions",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "seed", Usage: "32-byte hex seed", Required: true},
		&cli.StringSliceFlag{Name: "junction-hex", Usage: "hex-encoded junction, repeatable"},
		prefixFlag,
	},
	Action: func(cCtx *cli.Context) error {
		raw, err := decodeHex(cCtx.String("seed"))
		if err != nil {
			return fmt.Errorf("invalid seed: %w", err)
		}
		if len(raw) != sr25519.SeedSize {
			return fmt.Errorf("seed must be %d bytes, got %d", sr25519.SeedSize, len(raw))
		}

		r, err := newRegistry(cCtx)
		if err != nil {
			return err
		}

		h := r.GenerateFromSeed(sr25519.MustSeed(raw))
		for _, jh := range cCtx.StringSlice("junction-hex") {
			j, err := decodeHex(jh)
			if err != nil {
				return fmt.Errorf("invalid junction %q: %w", jh, err)
			}
			child, err := r.DeriveHard(h, j)
			r.Destroy(h)
			if err != nil {
				return err
			}
			h = child
		}
		defer r.Destroy(h)

		pub, err := r.PublicKey(h)
		if err != nil {
			return err
		}
		return printPublic(cCtx, cCtx.App.Writer, pub)
	},
}

var signCommand = &cli.Command{
	Name:  "sign",
	Usage: "Sign a message with the key behind a secret URI",
	Flags: []cli.Flag{
		suriFlag,
		messageFlag,
		&cli.BoolFlag{Name: "mock-rng", Usage: "reproducible signatures; requires bridge.allow_mock_rng"},
	},
	Action: func(cCtx *cli.Context) error {
		msg, err := messageBytes(cCtx.String(messageFlag.Name))
		if err != nil {
			return err
		}

		r, err := newRegistry(cCtx)
		if err != nil {
			return err
		}
		h, err := handleFromURI(r, cCtx.String(suriFlag.Name))
		if err != nil {
			return err
		}
		defer r.Destroy(h)

		if cCtx.Bool("mock-rng") {
			if err := r.UseMockRNGForTesting(h); err != nil {
				return err
			}
		}

		sig, err := r.SignMessage(h, msg)
		if err != nil {
			return err
		}
		fmt.Fprintf(cCtx.App.Writer, "0x%s\n", sig)
		return nil
	},
}

var verifyCommand = &cli.Command{
	Name:  "verify",
	Usage: "Verify a signature against a public key or SS58 address",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "public", Usage: "hex public key or SS58 address", Required: true},
		&cli.StringFlag{Name: "signature", Usage: "hex signature", Required: true},
		messageFlag,
	},
	Action: func(cCtx *cli.Context) error {
		cfg := configFrom(cCtx)

		pub, err := parsePublic(cCtx.String("public"))
		if err != nil {
			return err
		}
		sig, err := decodeHex(cCtx.String("signature"))
		if err != nil {
			return fmt.Errorf("invalid signature: %w", err)
		}
		msg, err := messageBytes(cCtx.String(messageFlag.Name))
		if err != nil {
			return err
		}

		if !sr25519.VerifyWithPublicKey(pub, []byte(cfg.Bridge.SigningContext), sig, msg) {
			fmt.Fprintln(cCtx.App.Writer, "Signature verification failed")
			return errInvalidSignature
		}
		fmt.Fprintln(cCtx.App.Writer, "Signature verifies correctly")
		return nil
	},
}

func newRegistry(cCtx *cli.Context) (*bridge.Registry, error) {
	return bridge.NewRegistryFromConfig(configFrom(cCtx).Bridge)
}

// handleFromURI walks a secret URI through the registry, releasing every
// intermediate handle.
func handleFromURI(r *bridge.Registry, s string) (bridge.Handle, error) {
	u, err := suri.Parse(s)
	if err != nil {
		return 0, err
	}
	for _, j := range u.Path {
		if !j.Hard {
			return 0, fmt.Errorf("%w: %s", suri.ErrSoftDerivationUnsupported, j)
		}
	}
	seed, err := u.Seed()
	if err != nil {
		return 0, err
	}

	h := r.GenerateFromSeed(seed)
	for _, j := range u.Path {
		child, err := r.DeriveHard(h, j.Encoded)
		r.Destroy(h)
		if err != nil {
			return 0, err
		}
		h = child
	}
	return h, nil
}

func printPublic(cCtx *cli.Context, w io.Writer, pub sr25519.PublicKey) error {
	prefix := configFrom(cCtx).Bridge.SS58Prefix
	if p := cCtx.Int(prefixFlag.Name); p >= 0 {
		if p > int(ss58.MaxPrefix) {
			return fmt.Errorf("%w: %d", ss58.ErrInvalidPrefix, p)
		}
		prefix = uint16(p)
	}

	addr, err := ss58.Encode(pub, prefix)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Public key (hex): 0x%s\n", pub)
	fmt.Fprintf(w, "SS58 Address:     %s\n", addr)
	return nil
}

func parsePublic(s string) (sr25519.PublicKey, error) {
	if raw, err := decodeHex(s); err == nil && len(raw) == sr25519.PublicKeySize {
		var pub sr25519.PublicKey
		copy(pub[:], raw)
		return pub, nil
	}
	pub, _, err := ss58.Decode(s)
	if err != nil {
		return sr25519.PublicKey{}, fmt.Errorf("public key is neither hex nor SS58: %w", err)
	}
	return pub, nil
}

func messageBytes(s string) ([]byte, error) {
	if strings.HasPrefix(s, "0x") {
		return decodeHex(s)
	}
	return []byte(s), nil
}

func decodeHex(s string) ([]byte, error) {
	return hex.DecodeString(strings.TrimPrefix(s, "0x"))
}

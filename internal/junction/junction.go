// Package junction encodes derivation path segments the way Substrate does
// before they are turned into chain codes.
//
// A segment that parses as a uint64 is encoded as 8 little-endian bytes; any
// other segment is encoded as a SCALE string, that is a compact length prefix
// followed by its UTF-8 bytes.
package junction

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrEmptyJunction = errors.New("empty junction")
	ErrInvalidPath   = errors.New("invalid derivation path")
)

// Junction is one encoded derivation step.
type Junction struct {
	Hard    bool
	Encoded []byte

	text string
}

// Hard builds a hard junction from its textual form.
func Hard(segment string) (Junction, error) {
	return newJunction(segment, true)
}

// Soft builds a soft junction from its textual form.
func Soft(segment string) (Junction, error) {
	return newJunction(segment, false)
}

func newJunction(segment string, hard bool) (Junction, error) {
	if segment == "" {
		return Junction{}, ErrEmptyJunction
	}
	return Junction{Hard: hard, Encoded: Encode(segment), text: segment}, nil
}

// Encode returns the encoded bytes of a single path segment.
func Encode(segment string) []byte {
	if n, err := strconv.ParseUint(segment, 10, 64); err == nil {
		out := make([]byte, 8)
		binary.LittleEndian.PutUint64(out, n)
		return out
	}
	return append(EncodeCompact(uint64(len(segment))), segment...)
}

func (j Junction) String() string {
	if j.Hard {
		return "//" + j.text
	}
	return "/" + j.text
}

// Parse splits a path such as "//polkadot//0/soft" into junctions.
// An empty path yields no junctions.
func Parse(path string) ([]Junction, error) {
	if path == "" {
		return nil, nil
	}
	if !strings.HasPrefix(path, "/") {
		return nil, fmt.Errorf("%w: %q must start with '/'", ErrInvalidPath, path)
	}

	var out []Junction
	rest := path
	for rest != "" {
		hard := strings.HasPrefix(rest, "//")
		if hard {
			rest = rest[2:]
		} else {
			rest = rest[1:]
		}

		end := strings.IndexByte(rest, '/')
		if end < 0 {
			end = len(rest)
		}
		segment := rest[:end]
		rest = rest[end:]

		j, err := newJunction(segment, hard)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrInvalidPath, path, err)
		}
		out = append(out, j)
	}
	return out, nil
}

// FormatPath is the inverse of Parse.
func FormatPath(junctions []Junction) string {
	var b strings.Builder
	for _, j := range junctions {
		b.WriteString(j.String())
	}
	return b.String()
}

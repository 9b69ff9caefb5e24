package sr25519

import (
	"crypto/rand"
	"encoding/binary"
	"io"
)

// mockRNGSeed is the first value of the counter sequence used by keys built
// with WithMockRNGForTesting.
const mockRNGSeed uint64 = 0x5ee7_5ee7_5ee7_5ee7

// counterReader yields the little-endian encoding of an incrementing counter.
type counterReader struct {
	next uint64
	buf  [8]byte
	off  int
}

func newCounterReader() *counterReader {
	return &counterReader{next: mockRNGSeed, off: 8}
}

func (c *counterReader) Read(p []byte) (int, error) {
	for i := range p {
		if c.off == len(c.buf) {
			binary.LittleEndian.PutUint64(c.buf[:], c.next)
			c.next++
			c.off = 0
		}
		p[i] = c.buf[c.off]
		c.off++
	}
	return len(p), nil
}

// entropy returns the source of signing randomness for one signature.
func (k *KeyMaterial) entropy() io.Reader {
	if k.deterministic {
		return newCounterReader()
	}
	return rand.Reader
}

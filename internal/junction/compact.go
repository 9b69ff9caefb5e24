package junction

import (
	"encoding/binary"
	"math/bits"
)

// EncodeCompact encodes n with the SCALE compact integer scheme.
func EncodeCompact(n uint64) []byte {
	switch {
	case n < 1<<6:
		return []byte{byte(n << 2)}
	case n < 1<<14:
		out := make([]byte, 2)
		binary.LittleEndian.PutUint16(out, uint16(n<<2)|0b01)
		return out
	case n < 1<<30:
		out := make([]byte, 4)
		binary.LittleEndian.PutUint32(out, uint32(n<<2)|0b10)
		return out
	}

	size := (bits.Len64(n) + 7) / 8
	out := make([]byte, 1+size)
	out[0] = byte(size-4)<<2 | 0b11
	for i := 0; i < size; i++ {
		out[1+i] = byte(n >> (8 * i))
	}
	return out
}

package payload

import "github.com/faanross/stegocrypt/internal/spec"

// BytesToBits expands data into one 0/1 value per bit, most significant
// bit first.
func BytesToBits(data []byte) []byte {
	bits := make([]byte, len(data)*spec.BITS_PER_BYTE)
	for i, b := range data {
		for j := 0; j < spec.BITS_PER_BYTE; j++ {
			bits[i*spec.BITS_PER_BYTE+j] = (b >> (7 - j)) & 1
		}
	}
	return bits
}

// BitsToBytes packs bits back into bytes, most significant bit first.
// A trailing group shorter than a byte is dropped.
func BitsToBytes(bits []byte) []byte {
	out := make([]byte, len(bits)/spec.BITS_PER_BYTE)
	for i := range out {
		var b byte
		for j := 0; j < spec.BITS_PER_BYTE; j++ {
			b = b<<1 | bits[i*spec.BITS_PER_BYTE+j]&1
		}
		out[i] = b
	}
	return out
}

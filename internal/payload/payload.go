// Package payload frames a salt and a ciphertext into the byte envelope
// that is hidden in a carrier:
//
//	salt | "####" | ciphertext | "####"
//
// Ciphertexts are URL-safe base64 tokens and never contain '#'; only the
// raw salt can collide with the delimiter, which Parse handles by reading
// the salt at its fixed offset first.
package payload

import (
	"bytes"
	"errors"

	"github.com/faanross/stegocrypt/internal/spec"
)

// ErrFraming is returned when no complete envelope can be found.
var ErrFraming = errors.New("no hidden message found or data is corrupted")

var delimiter = []byte(spec.DELIMITER)

// Build concatenates salt and ciphertext into an envelope.
func Build(salt, ciphertext []byte) []byte {
	out := make([]byte, 0, len(salt)+len(ciphertext)+2*len(delimiter))
	out = append(out, salt...)
	out = append(out, delimiter...)
	out = append(out, ciphertext...)
	return append(out, delimiter...)
}

// Parse recovers salt and ciphertext from raw extracted bytes. Anything
// after the closing delimiter is ignored.
func Parse(raw []byte) (salt, ciphertext []byte, err error) {
	if s, c, ok := parseFixedSalt(raw); ok {
		return s, c, nil
	}

	parts := bytes.Split(raw, delimiter)
	if len(parts) < 3 {
		return nil, nil, ErrFraming
	}
	return parts[0], parts[1], nil
}

// parseFixedSalt reads a spec.SALT_SIZE salt followed by the delimiter,
// so that delimiter bytes inside the salt cannot shift the split.
func parseFixedSalt(raw []byte) (salt, ciphertext []byte, ok bool) {
	head := spec.SALT_SIZE + len(delimiter)
	if len(raw) < head || !bytes.Equal(raw[spec.SALT_SIZE:head], delimiter) {
		return nil, nil, false
	}

	end := bytes.Index(raw[head:], delimiter)
	if end < 0 {
		return nil, nil, false
	}
	return raw[:spec.SALT_SIZE], raw[head : head+end], true
}

// BitLen is the number of carrier slots an envelope occupies.
func BitLen(envelope []byte) int {
	return len(envelope) * spec.BITS_PER_BYTE
}

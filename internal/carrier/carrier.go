// Package carrier adapts decoded images and PCM WAV files to the slot
// sequence consumed by the lsb codec, and serializes them back losslessly.
package carrier

import "errors"

// ErrCarrierFormat is returned when input bytes are not a supported image
// or linear-PCM WAV file.
var ErrCarrierFormat = errors.New("unsupported or corrupted carrier file")

package scrypto

import (
	"io"
	"time"
)

// SetRandReaderForTesting sets the random reader used for salts.
// This is intended for testing only. Returns a function to restore the original reader.
func SetRandReaderForTesting(r io.Reader) func() {
	original := randReader
	randReader = r
	return func() { randReader = original }
}

// SetClockForTesting replaces the clock that stamps new tokens.
// Returns a function to restore the original clock.
func SetClockForTesting(now func() time.Time) func() {
	original := clock
	clock = now
	return func() { clock = original }
}

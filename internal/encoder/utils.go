package encoder

import (
	"github.com/faanross/stegocrypt/internal/payload"
	"github.com/faanross/stegocrypt/internal/spec"
)

// PayloadStats describes how much of a carrier a payload occupies.
type PayloadStats struct {
	PayloadBytes int
	BitsNeeded   int
	Capacity     int
	Utilization  float64
}

// Stats reports payload size against a carrier of capacity bits.
func (sse *SecureStegoEncoder) Stats(capacity int) PayloadStats {
	stats := PayloadStats{
		PayloadBytes: len(sse.securePayload),
		BitsNeeded:   payload.BitLen(sse.securePayload),
		Capacity:     capacity,
	}
	if capacity > 0 {
		stats.Utilization = float64(stats.BitsNeeded) * 100 / float64(capacity)
	}
	return stats
}

// RequiredPixels is the smallest number of RGB pixels that can hold the
// prepared payload.
func (sse *SecureStegoEncoder) RequiredPixels() int {
	bits := payload.BitLen(sse.securePayload)
	return (bits + spec.CHANNELS - 1) / spec.CHANNELS
}

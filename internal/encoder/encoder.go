package encoder

import (
	"bytes"
	"fmt"
	"io"

	"github.com/faanross/stegocrypt/internal/carrier"
	"github.com/faanross/stegocrypt/internal/lsb"
	"github.com/faanross/stegocrypt/internal/payload"
	"github.com/sirupsen/logrus"
)

// SecureStegoEncoder handles encrypted steganography
type SecureStegoEncoder struct {
	password      []byte
	message       []byte
	securePayload []byte
	maxPixels     int
	log           *logrus.Logger
}

// Option configures a SecureStegoEncoder.
type Option func(*SecureStegoEncoder)

// WithLogger routes pipeline logging to l.
func WithLogger(l *logrus.Logger) Option {
	return func(sse *SecureStegoEncoder) {
		sse.log = l
	}
}

// WithMaxPixels caps the size of image carriers accepted by HideInImage.
func WithMaxPixels(n int) Option {
	return func(sse *SecureStegoEncoder) {
		sse.maxPixels = n
	}
}

// NewSecureStegoEncoder creates an encoder with encryption
func NewSecureStegoEncoder(message, password []byte, opts ...Option) *SecureStegoEncoder {
	sse := &SecureStegoEncoder{
		password:  password,
		message:   message,
		maxPixels: carrier.DefaultMaxPixels,
	}
	for _, opt := range opts {
		opt(sse)
	}
	if sse.log == nil {
		sse.log = logrus.New()
	}
	return sse
}

// Embed hides the secure payload in slots. The payload is prepared on
// first use. If it does not fit, slots are left unchanged.
func (sse *SecureStegoEncoder) Embed(slots lsb.Slots) error {
	if sse.securePayload == nil {
		if err := sse.PrepareSecurePayload(); err != nil {
			return err
		}
	}

	stats := sse.Stats(slots.Len())
	sse.log.WithFields(logrus.Fields{
		"payload_bytes": stats.PayloadBytes,
		"bits_needed":   stats.BitsNeeded,
		"capacity_bits": stats.Capacity,
	}).Debug("Embedding secure payload")

	if err := lsb.Embed(payload.BytesToBits(sse.securePayload), slots); err != nil {
		return err
	}

	sse.log.WithField("utilization", fmt.Sprintf("%.1f%%", stats.Utilization)).Debug("Payload embedded")
	return nil
}

// HideInImage reads an image carrier from r, embeds the message and writes
// a PNG to w. Nothing is written to w unless every step succeeds.
func (sse *SecureStegoEncoder) HideInImage(r io.Reader, w io.Writer) error {
	img, err := carrier.LoadImageLimited(r, sse.maxPixels)
	if err != nil {
		return err
	}

	sse.log.WithFields(logrus.Fields{
		"format": img.Format,
		"width":  img.Width(),
		"height": img.Height(),
	}).Debug("Image carrier loaded")

	if err := sse.Embed(img); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := img.Encode(&buf); err != nil {
		return err
	}
	_, err = buf.WriteTo(w)
	return err
}

// HideInAudio reads a PCM WAV carrier from r, embeds the message and writes
// a WAV to w. Nothing is written to w unless every step succeeds.
func (sse *SecureStegoEncoder) HideInAudio(r io.Reader, w io.Writer) error {
	audio, err := carrier.LoadAudio(r)
	if err != nil {
		return err
	}

	sse.log.WithFields(logrus.Fields{
		"channels":     audio.Channels,
		"sample_width": audio.SampleWidth,
		"frames":       audio.FrameCount(),
	}).Debug("Audio carrier loaded")

	if err := sse.Embed(audio); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := audio.Encode(&buf); err != nil {
		return err
	}
	_, err = buf.WriteTo(w)
	return err
}

package decoder

import (
	"io"

	"github.com/faanross/stegocrypt/internal/carrier"
	"github.com/faanross/stegocrypt/internal/lsb"
	"github.com/faanross/stegocrypt/internal/payload"
	"github.com/sirupsen/logrus"
)

// SecureStegoDecoder handles decryption and extraction
type SecureStegoDecoder struct {
	slots    lsb.Slots
	password []byte
	bits     []byte
	salt     []byte
	token    []byte
	maxPix   int
	log      *logrus.Logger
}

// Option configures a SecureStegoDecoder.
type Option func(*SecureStegoDecoder)

// WithLogger routes pipeline logging to l.
func WithLogger(l *logrus.Logger) Option {
	return func(ssd *SecureStegoDecoder) {
		ssd.log = l
	}
}

// WithMaxPixels caps the size of image carriers accepted by RevealFromImage.
func WithMaxPixels(n int) Option {
	return func(ssd *SecureStegoDecoder) {
		ssd.maxPix = n
	}
}

// NewSecureStegoDecoder creates a decoder instance
func NewSecureStegoDecoder(slots lsb.Slots, password []byte, opts ...Option) *SecureStegoDecoder {
	ssd := &SecureStegoDecoder{
		slots:    slots,
		password: password,
		maxPix:   carrier.DefaultMaxPixels,
	}
	for _, opt := range opts {
		opt(ssd)
	}
	if ssd.log == nil {
		ssd.log = logrus.New()
	}
	return ssd
}

// ExtractBitStream extracts all LSBs from the carrier. The payload length
// is unknown at this point, so every slot is read.
func (ssd *SecureStegoDecoder) ExtractBitStream() {
	ssd.bits = lsb.ExtractBits(ssd.slots)
	ssd.log.WithField("bits", len(ssd.bits)).Debug("Bit stream extracted")
}

// ExtractSecurePayload reconstructs the salt and token from the bit stream
func (ssd *SecureStegoDecoder) ExtractSecurePayload() error {
	if ssd.bits == nil {
		ssd.ExtractBitStream()
	}

	salt, token, err := payload.Parse(payload.BitsToBytes(ssd.bits))
	if err != nil {
		return err
	}

	ssd.salt, ssd.token = salt, token
	ssd.log.WithFields(logrus.Fields{
		"salt_size":  len(salt),
		"token_size": len(token),
	}).Debug("Secure payload located")
	return nil
}

// Reveal runs extraction and decryption end to end.
func (ssd *SecureStegoDecoder) Reveal() (*ExtractedMessage, error) {
	ssd.ExtractBitStream()
	if err := ssd.ExtractSecurePayload(); err != nil {
		return nil, err
	}
	return ssd.DecryptPayload()
}

// RevealFromImage decodes an image carrier and returns the hidden message.
func RevealFromImage(r io.Reader, password []byte, opts ...Option) (*ExtractedMessage, error) {
	ssd := NewSecureStegoDecoder(nil, password, opts...)
	img, err := carrier.LoadImageLimited(r, ssd.maxPix)
	if err != nil {
		return nil, err
	}
	ssd.slots = img
	return ssd.Reveal()
}

// RevealFromAudio decodes a PCM WAV carrier and returns the hidden message.
func RevealFromAudio(r io.Reader, password []byte, opts ...Option) (*ExtractedMessage, error) {
	audio, err := carrier.LoadAudio(r)
	if err != nil {
		return nil, err
	}
	return NewSecureStegoDecoder(audio, password, opts...).Reveal()
}

package decoder

import (
	"github.com/faanross/stegocrypt/internal/payload"
	"github.com/faanross/stegocrypt/internal/scrypto"
)

// ExtractedMessage contains decrypted message and metadata
type ExtractedMessage struct {
	Message       []byte
	EncryptedSize int
	DecryptedSize int
	Authenticated bool
}

// DecryptPayload decrypts the extracted payload
func (ssd *SecureStegoDecoder) DecryptPayload() (*ExtractedMessage, error) {
	if ssd.token == nil {
		return nil, payload.ErrFraming
	}

	plaintext, err := scrypto.DecryptMessage(ssd.token, ssd.password, ssd.salt)
	if err != nil {
		ssd.log.Debug("Token verification failed")
		return nil, err
	}

	ssd.log.WithField("decrypted_size", len(plaintext)).Debug("Authentication successful")

	return &ExtractedMessage{
		Message:       plaintext,
		EncryptedSize: len(ssd.token),
		DecryptedSize: len(plaintext),
		Authenticated: true,
	}, nil
}

package encoder

import (
	"github.com/faanross/stegocrypt/internal/payload"
	"github.com/faanross/stegocrypt/internal/scrypto"
	"github.com/sirupsen/logrus"
)

// EncryptMessage seals the message under a key derived from the password
// and a fresh salt.
func (sse *SecureStegoEncoder) EncryptMessage() (*scrypto.SecureMessage, error) {
	secMsg, err := scrypto.EncryptMessage(sse.message, sse.password)
	if err != nil {
		return nil, err
	}

	sse.log.WithFields(logrus.Fields{
		"original_size": secMsg.OriginalSize,
		"token_size":    len(secMsg.Token),
	}).Debug("Message encrypted")

	return secMsg, nil
}

// PrepareSecurePayload creates the final payload for embedding
func (sse *SecureStegoEncoder) PrepareSecurePayload() error {
	secMsg, err := sse.EncryptMessage()
	if err != nil {
		return err
	}

	// Payload structure:
	// [Salt(16)][####][Fernet token][####]
	sse.securePayload = payload.Build(secMsg.Salt, secMsg.Token)
	return nil
}

// SecurePayload returns the framed payload, or nil before it is prepared.
func (sse *SecureStegoEncoder) SecurePayload() []byte {
	return sse.securePayload
}

package scrypto

import (
	"crypto/aes"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/faanross/stegocrypt/internal/spec"
	"github.com/fernet/fernet-go"
)

var clock = time.Now

// Smallest well-formed token before base64:
//
//	version(1) | timestamp(8) | iv(16) | one block | hmac(32)
const minTokenSize = 1 + spec.TIMESTAMP_LEN + spec.IV_SIZE + aes.BlockSize + spec.HMAC_SIZE

// noExpiry disables the token age check.
const noExpiry = -1

func fernetKey(key []byte) (*fernet.Key, error) {
	if len(key) != spec.KEY_SIZE {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidKeySize, len(key), spec.KEY_SIZE)
	}
	var k fernet.Key
	copy(k[:], key)
	return &k, nil
}

// Encrypt seals plaintext into a URL-safe base64 Fernet token. The first
// half of key signs, the second half encrypts. A fresh IV is drawn for
// every call, so equal inputs never produce equal tokens.
func Encrypt(key, plaintext []byte) ([]byte, error) {
	k, err := fernetKey(key)
	if err != nil {
		return nil, err
	}

	token, err := fernet.EncryptAndSignAtTime(plaintext, k, clock())
	if err != nil {
		return nil, fmt.Errorf("token generation failed: %w", err)
	}
	return token, nil
}

// Decrypt verifies and opens a token produced by Encrypt. Any structural
// defect or MAC mismatch yields ErrIntegrity.
func Decrypt(key, token []byte) ([]byte, error) {
	k, err := fernetKey(key)
	if err != nil {
		return nil, err
	}

	// fernet-go slices the payload without a lower bound once the MAC
	// verifies, so undersized tokens are rejected here.
	raw, err := base64.URLEncoding.DecodeString(string(token))
	if err != nil || len(raw) < minTokenSize {
		return nil, ErrIntegrity
	}

	plaintext := fernet.VerifyAndDecrypt(token, noExpiry, []*fernet.Key{k})
	if plaintext == nil {
		return nil, ErrIntegrity
	}
	return plaintext, nil
}

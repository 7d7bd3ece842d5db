// Package scrypto derives keys from passwords and seals messages into
// authenticated Fernet tokens.
package scrypto

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"
	"syscall"
	"unicode/utf8"

	"github.com/faanross/stegocrypt/internal/spec"
	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/term"
)

var randReader io.Reader = rand.Reader

// SecureMessage contains all cryptographic components
type SecureMessage struct {
	Salt         []byte
	Token        []byte
	OriginalSize int
}

// DeriveKey generates encryption key from password using PBKDF2
func DeriveKey(password, salt []byte) []byte {
	return pbkdf2.Key(password, salt, spec.PBKDF2_ITERS, spec.KEY_SIZE, sha256.New)
}

// EncryptMessage salts, derives a key and seals message into a token.
func EncryptMessage(message, password []byte) (*SecureMessage, error) {
	salt := make([]byte, spec.SALT_SIZE)
	if _, err := io.ReadFull(randReader, salt); err != nil {
		return nil, fmt.Errorf("salt generation failed: %w", err)
	}

	key := DeriveKey(password, salt)

	token, err := Encrypt(key, message)
	if err != nil {
		return nil, err
	}

	return &SecureMessage{
		Salt:         salt,
		Token:        token,
		OriginalSize: len(message),
	}, nil
}

// DecryptMessage opens a token sealed by EncryptMessage. Every failure,
// including a plaintext that is not UTF-8 text, is reported as ErrIntegrity.
func DecryptMessage(token, password, salt []byte) ([]byte, error) {
	key := DeriveKey(password, salt)

	plaintext, err := Decrypt(key, token)
	if err != nil {
		return nil, err
	}

	if !utf8.Valid(plaintext) {
		return nil, ErrIntegrity
	}

	return plaintext, nil
}

// GetSecurePassword prompts for password with hidden input
func GetSecurePassword(prompt string, minLength int) ([]byte, error) {
	fmt.Print(prompt)
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println() // New line after password

	if err != nil {
		return nil, fmt.Errorf("password read failed: %w", err)
	}

	if len(password) < minLength {
		return nil, fmt.Errorf("password must be at least %d characters", minLength)
	}

	return password, nil
}

package scrypto

import "errors"

var (
	// ErrIntegrity is returned when a token fails verification. A wrong
	// password and a corrupted token are deliberately indistinguishable.
	ErrIntegrity = errors.New("invalid password or corrupted data")

	// ErrInvalidKeySize is returned when the key is not spec.KEY_SIZE bytes.
	ErrInvalidKeySize = errors.New("invalid key size")
)

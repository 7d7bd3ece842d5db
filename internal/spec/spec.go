package spec

// Steganography constants
const (
	DELIMITER     = "####" // Marks the end of the salt and of the ciphertext
	BITS_PER_BYTE = 8      // Standard byte size
	CHANNELS      = 3      // RGB channels per pixel
)

// Security constants
const (
	SALT_SIZE    = 16     // Salt for PBKDF2
	KEY_SIZE     = 32     // Derived key: 16 bytes HMAC + 16 bytes AES-128
	PBKDF2_ITERS = 480000 // PBKDF2 iterations

	// Fernet token layout
	TOKEN_VERSION = 0x80
	TIMESTAMP_LEN = 8
	IV_SIZE       = 16 // AES block size
	HMAC_SIZE     = 32 // SHA-256 output
)

// Output names used by the CLI tools and the HTTP API
const (
	ENCODED_IMAGE_NAME = "encoded_image.png"
	ENCODED_AUDIO_NAME = "encoded_audio.wav"
)

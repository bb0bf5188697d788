package crypto

import "errors"

var (
	// ErrInvalidPrivateKeySize is returned when the private key size is invalid.
	ErrInvalidPrivateKeySize = errors.New("invalid private key size")

	// ErrInvalidPublicKeySize is returned when the public key size is invalid.
	ErrInvalidPublicKeySize = errors.New("invalid public key size")

	// ErrInvalidPrivateKey is returned when the private key is not a valid P-256 scalar.
	ErrInvalidPrivateKey = errors.New("invalid private key")

	// ErrInvalidEncapsulatedKey is returned when the encapsulated key is not
	// a valid uncompressed P-256 point.
	ErrInvalidEncapsulatedKey = errors.New("invalid encapsulated key")

	// ErrDecapsulationFailed is returned when ECDH with the encapsulated key fails.
	ErrDecapsulationFailed = errors.New("decapsulation failed")

	// ErrDecryptionFailed is returned when decryption fails.
	ErrDecryptionFailed = errors.New("decryption failed")

	// ErrInvalidKeySize is returned when the AES key size is invalid.
	ErrInvalidKeySize = errors.New("invalid key size")

	// ErrInvalidNonceSize is returned when the nonce size is invalid.
	ErrInvalidNonceSize = errors.New("invalid nonce size")

	// ErrInvalidLength is returned when a labeled expand asks for more output
	// than HKDF can produce or than I2OSP(length, 2) can encode.
	ErrInvalidLength = errors.New("invalid expand length")

	// ErrMessageLimitReached is returned when the sequence number would overflow.
	ErrMessageLimitReached = errors.New("message limit reached")
)

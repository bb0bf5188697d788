package crypto

import (
	"crypto/ecdh"
	"fmt"
)

// Open decrypts a single-shot HPKE base-mode message.
//
// The decryption process:
//  1. DHKEM(P-256) decapsulation of enc to recover the shared secret
//  2. Key schedule over the shared secret and info
//  3. AES-128-GCM decryption with aad as associated data and sequence number 0
//
// Tag mismatch, tampering, a wrong key and a wrong aad are indistinguishable
// and all surface as ErrDecryptionFailed.
func Open(enc []byte, skR *ecdh.PrivateKey, pkRm, info, aad, ciphertext []byte) ([]byte, error) {
	// 1. KEM Decapsulation
	sharedSecret, err := Decap(enc, skR, pkRm)
	if err != nil {
		return nil, fmt.Errorf("decap: %w", err)
	}

	// 2. Key schedule
	ctx, err := KeyScheduleR(sharedSecret, info)
	if err != nil {
		return nil, fmt.Errorf("key schedule: %w", err)
	}

	// 3. AES-128-GCM Decryption
	plaintext, err := ctx.Open(aad, ciphertext)
	if err != nil {
		return nil, fmt.Errorf("decrypt: %w", err)
	}

	return plaintext, nil
}

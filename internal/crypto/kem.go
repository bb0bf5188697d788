package crypto

import (
	"crypto/ecdh"
	"fmt"
)

// Decap recovers the DHKEM(P-256, HKDF-SHA256) shared secret from the
// sender's encapsulated key.
//
//	dh = DH(skR, pkE)
//	kem_context = enc || pkRm
//	eae_prk = LabeledExtract("", "eae_prk", dh)
//	shared_secret = LabeledExpand(eae_prk, "shared_secret", kem_context, Nsecret)
//
// pkRm must be the serialized public key belonging to skR.
func Decap(enc []byte, skR *ecdh.PrivateKey, pkRm []byte) ([]byte, error) {
	if skR == nil {
		return nil, ErrInvalidPrivateKey
	}
	if len(pkRm) != PublicKeySize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidPublicKeySize, len(pkRm), PublicKeySize)
	}
	if len(enc) != EncapsulatedKeySize || enc[0] != uncompressedPointMarker {
		return nil, fmt.Errorf("%w: expected %d-byte uncompressed point", ErrInvalidEncapsulatedKey, EncapsulatedKeySize)
	}

	pkE, err := ecdh.P256().NewPublicKey(enc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEncapsulatedKey, err)
	}

	dh, err := skR.ECDH(pkE)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecapsulationFailed, err)
	}

	kemContext := make([]byte, 0, len(enc)+len(pkRm))
	kemContext = append(kemContext, enc...)
	kemContext = append(kemContext, pkRm...)

	eaePRK := LabeledExtract(KEMSuiteID, nil, "eae_prk", dh)
	return LabeledExpand(KEMSuiteID, eaePRK, "shared_secret", kemContext, SharedSecretSize)
}

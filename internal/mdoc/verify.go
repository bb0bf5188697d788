package mdoc

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/sha256"
	"crypto/subtle"
	"fmt"
	"math/big"
	"strings"

	"github.com/bytemare/hash"
)

// digestFunction maps an MSO digestAlgorithm name to its hash.
func digestFunction(name string) (*hash.Fixed, error) {
	switch strings.ToUpper(name) {
	case "SHA-256":
		return hash.FromCrypto(crypto.SHA256).GetHashFunction(), nil
	case "SHA-384":
		return hash.FromCrypto(crypto.SHA384).GetHashFunction(), nil
	case "SHA-512":
		return hash.FromCrypto(crypto.SHA512).GetHashFunction(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDigest, name)
	}
}

// Digest hashes data with the named MSO digest algorithm.
func Digest(algorithm string, data []byte) ([]byte, error) {
	h, err := digestFunction(algorithm)
	if err != nil {
		return nil, err
	}
	_, _ = h.Write(data)
	return h.Sum(nil), nil
}

// VerifyDigest checks the named claim against the value digest recorded in
// the mobile security object.
func (c *Credential) VerifyDigest(identifier string) error {
	claim, err := c.Claim(identifier)
	if err != nil {
		return err
	}

	want, ok := c.ValueDigests[claim.DigestID]
	if !ok {
		return fmt.Errorf("%w: no digest for %s (id %d)", ErrDigestMismatch, identifier, claim.DigestID)
	}

	got, err := Digest(c.DigestAlgorithm, claim.Tagged)
	if err != nil {
		return err
	}

	if subtle.ConstantTimeCompare(got, want) != 1 {
		return fmt.Errorf("%w: %s", ErrDigestMismatch, identifier)
	}
	return nil
}

// VerifySignature checks the ES256 issuer signature over SignedDocument with
// IssuerKey. Certificate chains are not validated.
func (c *Credential) VerifySignature() error {
	pub, err := ecdsa.ParseUncompressedPublicKey(elliptic.P256(), c.IssuerKey.Bytes())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPublicKeyNotFound, err)
	}
	if len(c.Signature) != SignatureSize {
		return fmt.Errorf("%w: signature is %d bytes", ErrInvalidSignature, len(c.Signature))
	}

	digest := sha256.Sum256(c.SignedDocument)
	r := new(big.Int).SetBytes(c.Signature[:SignatureSize/2])
	s := new(big.Int).SetBytes(c.Signature[SignatureSize/2:])

	if !ecdsa.Verify(pub, digest[:], r, s) {
		return ErrInvalidSignature
	}
	return nil
}

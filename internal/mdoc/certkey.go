package mdoc

import (
	"bytes"
	"crypto/ecdh"
	"encoding/asn1"
	"fmt"

	"golang.org/x/crypto/cryptobyte"
	cryptobyte_asn1 "golang.org/x/crypto/cryptobyte/asn1"
)

var (
	oidPublicKeyECDSA = asn1.ObjectIdentifier{1, 2, 840, 10045, 2, 1}
	oidNamedCurveP256 = asn1.ObjectIdentifier{1, 2, 840, 10045, 3, 1, 7}
)

// PublicKey holds the affine coordinates of a P-256 issuer key.
type PublicKey struct {
	X []byte
	Y []byte
}

// Bytes returns the uncompressed SEC1 encoding 0x04 || X || Y.
func (k PublicKey) Bytes() []byte {
	out := make([]byte, 0, 1+2*coordinateSize)
	out = append(out, 0x04)
	out = append(out, k.X...)
	return append(out, k.Y...)
}

// ExtractPublicKey locates the P-256 subject public key of a DER certificate
// by walking to SubjectPublicKeyInfo. With scanFallback set, certificates the
// walk cannot read are scanned for an embedded uncompressed point instead.
func ExtractPublicKey(der []byte, scanFallback bool) (PublicKey, error) {
	point, err := subjectPublicKey(der)
	if err != nil {
		if !scanFallback {
			return PublicKey{}, err
		}
		point, err = scanPublicKey(der)
		if err != nil {
			return PublicKey{}, err
		}
	}

	if _, err := ecdh.P256().NewPublicKey(point); err != nil {
		return PublicKey{}, fmt.Errorf("%w: point not on P-256", ErrPublicKeyNotFound)
	}

	return PublicKey{
		X: bytes.Clone(point[1 : 1+coordinateSize]),
		Y: bytes.Clone(point[1+coordinateSize:]),
	}, nil
}

// subjectPublicKey walks
//
//	Certificate ::= SEQUENCE { tbsCertificate SEQUENCE { [0] version OPTIONAL,
//	    serialNumber, signature, issuer, validity, subject,
//	    subjectPublicKeyInfo SEQUENCE { algorithm, subjectPublicKey BIT STRING } ... } ... }
//
// and returns the subjectPublicKey bits of an id-ecPublicKey/prime256v1 key.
func subjectPublicKey(der []byte) ([]byte, error) {
	input := cryptobyte.String(der)

	var cert, tbs, spki, alg cryptobyte.String
	if !input.ReadASN1(&cert, cryptobyte_asn1.SEQUENCE) {
		return nil, fmt.Errorf("%w: certificate is not a DER sequence", ErrPublicKeyNotFound)
	}
	if !cert.ReadASN1(&tbs, cryptobyte_asn1.SEQUENCE) {
		return nil, fmt.Errorf("%w: malformed tbsCertificate", ErrPublicKeyNotFound)
	}
	if !tbs.SkipOptionalASN1(cryptobyte_asn1.Tag(0).Constructed().ContextSpecific()) ||
		!tbs.SkipASN1(cryptobyte_asn1.INTEGER) ||
		!tbs.SkipASN1(cryptobyte_asn1.SEQUENCE) ||
		!tbs.SkipASN1(cryptobyte_asn1.SEQUENCE) ||
		!tbs.SkipASN1(cryptobyte_asn1.SEQUENCE) ||
		!tbs.SkipASN1(cryptobyte_asn1.SEQUENCE) {
		return nil, fmt.Errorf("%w: malformed tbsCertificate header", ErrPublicKeyNotFound)
	}
	if !tbs.ReadASN1(&spki, cryptobyte_asn1.SEQUENCE) || !spki.ReadASN1(&alg, cryptobyte_asn1.SEQUENCE) {
		return nil, fmt.Errorf("%w: malformed subjectPublicKeyInfo", ErrPublicKeyNotFound)
	}

	var algorithm, curve asn1.ObjectIdentifier
	if !alg.ReadASN1ObjectIdentifier(&algorithm) || !algorithm.Equal(oidPublicKeyECDSA) {
		return nil, fmt.Errorf("%w: not an EC public key", ErrPublicKeyNotFound)
	}
	if !alg.ReadASN1ObjectIdentifier(&curve) || !curve.Equal(oidNamedCurveP256) {
		return nil, fmt.Errorf("%w: curve is not P-256", ErrPublicKeyNotFound)
	}

	var bits asn1.BitString
	if !spki.ReadASN1BitString(&bits) || bits.BitLength%8 != 0 {
		return nil, fmt.Errorf("%w: malformed subjectPublicKey", ErrPublicKeyNotFound)
	}

	point := bits.RightAlign()
	if len(point) != 1+2*coordinateSize || point[0] != 0x04 {
		return nil, fmt.Errorf("%w: key is not an uncompressed point", ErrPublicKeyNotFound)
	}
	return point, nil
}

// scanPublicKey looks for 0x04 || X || Y introduced by a 65-byte length
// prefix, either bare (0x41) or as a DER bit string (0x42 0x00), with both
// coordinates non-zero and on the curve. It does not understand the
// surrounding structure and can be fooled by crafted input.
func scanPublicKey(data []byte) ([]byte, error) {
	const pointLen = 1 + 2*coordinateSize
	zero := make([]byte, coordinateSize)

	for i := 1; i+pointLen <= len(data); i++ {
		if data[i] != 0x04 {
			continue
		}
		bare := data[i-1] == pointLen
		bitString := i >= 2 && data[i-2] == pointLen+1 && data[i-1] == 0x00
		if !bare && !bitString {
			continue
		}

		point := data[i : i+pointLen]
		if bytes.Equal(point[1:1+coordinateSize], zero) || bytes.Equal(point[1+coordinateSize:], zero) {
			continue
		}
		if _, err := ecdh.P256().NewPublicKey(point); err != nil {
			continue
		}
		return point, nil
	}

	return nil, fmt.Errorf("%w: no uncompressed point in certificate", ErrPublicKeyNotFound)
}

package walletsim

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/x509"
	"crypto/x509/pkix"
	"fmt"
	"math/big"
	"time"

	"github.com/fxamacker/cbor/v2"
)

const (
	DocTypeMDL     = "org.iso.18013.5.1.mDL"
	NamespaceMDL   = "org.iso.18013.5.1"
	digestSHA256   = "SHA-256"
	msoVersion     = "1.0"
	responseVer    = "1.0"
	algES256       = -7
	headerAlg      = 1
	headerX5Chain  = 33
	tagEncodedCBOR = 24
	tagCOSESign1   = 18
	tagTDate       = 0
	tagEpoch       = 1
)

// CertificatePlacement selects where the x5chain header is written. The
// default is the unprotected header, which keeps the certificate out of the
// signed document.
type CertificatePlacement int

const (
	CertificateUnprotected CertificatePlacement = iota
	CertificateProtected
	CertificateChain
	CertificateNone
)

// Claim is a data element to issue.
type Claim struct {
	Identifier string
	Value      any
}

// DefaultClaims returns the elements a proof request normally needs.
func DefaultClaims() []Claim {
	return []Claim{
		{Identifier: "age_over_18", Value: true},
		{Identifier: "age_over_21", Value: true},
		{Identifier: "issuing_jurisdiction", Value: "CA"},
		{Identifier: "document_number", Value: "D1234567"},
	}
}

// DocumentOptions controls what Issue produces. The zero value issues
// DefaultClaims valid from one hour ago for thirty days.
type DocumentOptions struct {
	DocType   string
	Namespace string
	Claims    []Claim

	// FirstDigestID is the digest ID of the first claim; the rest follow.
	FirstDigestID uint64

	Signed     time.Time
	ValidFrom  time.Time
	ValidUntil time.Time
	// EpochDates writes validity dates as 1(int) instead of 0(tstr).
	EpochDates bool

	Placement CertificatePlacement
	// Certificate replaces the issuer's DER certificate in x5chain.
	Certificate []byte
	// TagIssuerAuth wraps the COSE_Sign1 in tag 18.
	TagIssuerAuth bool

	// MSODocType overrides the docType written into the security object.
	MSODocType string
	// CorruptDigest names a claim whose recorded digest is altered.
	CorruptDigest string
}

// Issuer is a document signer with a self-signed certificate.
type Issuer struct {
	key         *ecdsa.PrivateKey
	Certificate []byte
}

// NewIssuer generates a P-256 document signer and its certificate.
func NewIssuer() (*Issuer, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, err
	}

	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 64))
	if err != nil {
		return nil, err
	}

	now := time.Now()
	tmpl := &x509.Certificate{
		SerialNumber: serial,
		Subject:      pkix.Name{CommonName: "Test Document Signer", Country: []string{"US"}},
		NotBefore:    now.Add(-time.Hour),
		NotAfter:     now.AddDate(1, 0, 0),
		KeyUsage:     x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,

		BasicConstraintsValid: true,
		IsCA:                  true,
	}

	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	if err != nil {
		return nil, fmt.Errorf("create certificate: %w", err)
	}

	return &Issuer{key: key, Certificate: der}, nil
}

// PublicKey returns the uncompressed SEC1 encoding of the signer key.
func (i *Issuer) PublicKey() []byte {
	pub, err := i.key.PublicKey.Bytes()
	if err != nil {
		panic(err)
	}
	return pub
}

type issuerSignedItem struct {
	DigestID          uint64 `cbor:"digestID"`
	Random            []byte `cbor:"random"`
	ElementIdentifier string `cbor:"elementIdentifier"`
	ElementValue      any    `cbor:"elementValue"`
}

type validityInfo struct {
	Signed     cbor.Tag `cbor:"signed"`
	ValidFrom  cbor.Tag `cbor:"validFrom"`
	ValidUntil cbor.Tag `cbor:"validUntil"`
}

type mobileSecurityObject struct {
	Version         string                       `cbor:"version"`
	DigestAlgorithm string                       `cbor:"digestAlgorithm"`
	ValueDigests    map[string]map[uint64][]byte `cbor:"valueDigests"`
	DocType         string                       `cbor:"docType"`
	ValidityInfo    validityInfo                 `cbor:"validityInfo"`
}

type coseSign1 struct {
	_           struct{} `cbor:",toarray"`
	Protected   []byte
	Unprotected map[int]any
	Payload     []byte
	Signature   []byte
}

type issuerSigned struct {
	NameSpaces map[string][]cbor.RawMessage `cbor:"nameSpaces"`
	IssuerAuth cbor.RawMessage              `cbor:"issuerAuth"`
}

type document struct {
	DocType      string       `cbor:"docType"`
	IssuerSigned issuerSigned `cbor:"issuerSigned"`
}

type deviceResponse struct {
	Version   string     `cbor:"version"`
	Documents []document `cbor:"documents"`
	Status    uint64     `cbor:"status"`
}

// Issue builds a DeviceResponse holding one signed document.
func (i *Issuer) Issue(opts DocumentOptions) ([]byte, error) {
	opts = opts.withDefaults()

	items := make([]cbor.RawMessage, 0, len(opts.Claims))
	digests := make(map[uint64][]byte, len(opts.Claims))

	for n, c := range opts.Claims {
		random := make([]byte, 32)
		if _, err := rand.Read(random); err != nil {
			return nil, err
		}

		digestID := opts.FirstDigestID + uint64(n)
		raw, err := encMode.Marshal(issuerSignedItem{
			DigestID:          digestID,
			Random:            random,
			ElementIdentifier: c.Identifier,
			ElementValue:      c.Value,
		})
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", c.Identifier, err)
		}

		tagged, err := encMode.Marshal(cbor.Tag{Number: tagEncodedCBOR, Content: raw})
		if err != nil {
			return nil, err
		}
		items = append(items, tagged)

		digest := sha256.Sum256(tagged)
		if c.Identifier == opts.CorruptDigest {
			digest[0] ^= 0xff
		}
		digests[digestID] = digest[:]
	}

	mso, err := encMode.Marshal(mobileSecurityObject{
		Version:         msoVersion,
		DigestAlgorithm: digestSHA256,
		ValueDigests:    map[string]map[uint64][]byte{opts.Namespace: digests},
		DocType:         opts.MSODocType,
		ValidityInfo: validityInfo{
			Signed:     opts.date(opts.Signed),
			ValidFrom:  opts.date(opts.ValidFrom),
			ValidUntil: opts.date(opts.ValidUntil),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("encode mso: %w", err)
	}

	payload, err := encMode.Marshal(cbor.Tag{Number: tagEncodedCBOR, Content: mso})
	if err != nil {
		return nil, err
	}

	issuerAuth, err := i.sign(payload, opts)
	if err != nil {
		return nil, err
	}

	return encMode.Marshal(deviceResponse{
		Version: responseVer,
		Documents: []document{{
			DocType: opts.DocType,
			IssuerSigned: issuerSigned{
				NameSpaces: map[string][]cbor.RawMessage{opts.Namespace: items},
				IssuerAuth: issuerAuth,
			},
		}},
	})
}

func (i *Issuer) sign(payload []byte, opts DocumentOptions) ([]byte, error) {
	cert := opts.Certificate
	if cert == nil {
		cert = i.Certificate
	}

	protectedHeader := map[int]any{headerAlg: algES256}
	unprotected := map[int]any{}
	switch opts.Placement {
	case CertificateProtected:
		protectedHeader[headerX5Chain] = cert
	case CertificateUnprotected:
		unprotected[headerX5Chain] = cert
	case CertificateChain:
		unprotected[headerX5Chain] = [][]byte{cert, i.Certificate}
	}

	protected, err := encMode.Marshal(protectedHeader)
	if err != nil {
		return nil, err
	}

	toBeSigned, err := encMode.Marshal([]any{"Signature1", protected, []byte{}, payload})
	if err != nil {
		return nil, err
	}

	digest := sha256.Sum256(toBeSigned)
	r, s, err := ecdsa.Sign(rand.Reader, i.key, digest[:])
	if err != nil {
		return nil, fmt.Errorf("sign: %w", err)
	}
	signature := make([]byte, 64)
	r.FillBytes(signature[:32])
	s.FillBytes(signature[32:])

	msg, err := encMode.Marshal(coseSign1{
		Protected:   protected,
		Unprotected: unprotected,
		Payload:     payload,
		Signature:   signature,
	})
	if err != nil {
		return nil, err
	}

	if opts.TagIssuerAuth {
		return encMode.Marshal(cbor.Tag{Number: tagCOSESign1, Content: cbor.RawMessage(msg)})
	}
	return msg, nil
}

// EmptyResponse returns a DeviceResponse with no documents and the given status.
func EmptyResponse(status uint64) ([]byte, error) {
	return encMode.Marshal(deviceResponse{Version: responseVer, Documents: []document{}, Status: status})
}

func (o DocumentOptions) withDefaults() DocumentOptions {
	if o.DocType == "" {
		o.DocType = DocTypeMDL
	}
	if o.Namespace == "" {
		o.Namespace = NamespaceMDL
	}
	if o.Claims == nil {
		o.Claims = DefaultClaims()
	}
	if o.MSODocType == "" {
		o.MSODocType = o.DocType
	}

	now := time.Now().UTC().Truncate(time.Second)
	if o.Signed.IsZero() {
		o.Signed = now.Add(-time.Hour)
	}
	if o.ValidFrom.IsZero() {
		o.ValidFrom = o.Signed
	}
	if o.ValidUntil.IsZero() {
		o.ValidUntil = o.ValidFrom.AddDate(0, 0, 30)
	}
	return o
}

func (o DocumentOptions) date(t time.Time) cbor.Tag {
	if o.EpochDates {
		return cbor.Tag{Number: tagEpoch, Content: t.Unix()}
	}
	return cbor.Tag{Number: tagTDate, Content: t.UTC().Format(time.RFC3339)}
}

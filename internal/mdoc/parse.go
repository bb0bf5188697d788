package mdoc

import (
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// ClaimDocumentNumber identifies the claim that feeds the nullifier.
const ClaimDocumentNumber = "document_number"

// SignatureSize is the length of a raw ES256 signature (r || s).
const SignatureSize = 64

// ParseOptions selects the document and claims to extract.
type ParseOptions struct {
	// DocType defaults to DefaultDocType.
	DocType string
	// Namespace defaults to DefaultNamespace.
	Namespace string
	// Required lists claim identifiers that must be present in addition to
	// ClaimDocumentNumber.
	Required []string
	// Now is the reference time for the validity check; zero means time.Now.
	Now time.Time
	// KeyScanFallback enables the byte-pattern key scan for certificates the
	// DER walk cannot read.
	KeyScanFallback bool
}

// Claim is one issuer-signed data element.
type Claim struct {
	Identifier string
	DigestID   uint64
	Random     []byte
	// Value is the decoded element value.
	Value any
	// Raw is the embedded IssuerSignedItem encoding exactly as issued.
	Raw []byte
	// Tagged is the full 24(bstr) encoding that the value digest covers.
	Tagged []byte
}

// Bool reports the claim value as a boolean.
func (c *Claim) Bool() (bool, bool) {
	b, ok := c.Value.(bool)
	return b, ok
}

// Text reports the claim value as a text string.
func (c *Claim) Text() (string, bool) {
	s, ok := c.Value.(string)
	return s, ok
}

// Credential is the parsed, read-only view of one issuer-signed document.
type Credential struct {
	DocType   string
	Namespace string

	// SignedDocument is the COSE Sig_structure the issuer signed.
	SignedDocument []byte
	// Signature is the raw r || s issuer signature.
	Signature []byte

	Claims map[string]*Claim

	IssuerKey   PublicKey
	Certificate []byte

	// DocumentNumber is never revealed; it only feeds the nullifier.
	DocumentNumber []byte

	DigestAlgorithm string
	// ValueDigests maps digest IDs of Namespace to their digests.
	ValueDigests map[uint64][]byte
	Validity     Validity
}

// Claim returns the named claim or ErrMissingClaim.
func (c *Credential) Claim(identifier string) (*Claim, error) {
	claim, ok := c.Claims[identifier]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingClaim, identifier)
	}
	return claim, nil
}

type deviceResponse struct {
	Version   string     `cbor:"version"`
	Documents []document `cbor:"documents"`
	Status    uint64     `cbor:"status"`
}

type document struct {
	DocType      string       `cbor:"docType"`
	IssuerSigned issuerSigned `cbor:"issuerSigned"`
}

type issuerSigned struct {
	NameSpaces map[string][]cbor.RawMessage `cbor:"nameSpaces"`
	IssuerAuth cbor.RawMessage              `cbor:"issuerAuth"`
}

type issuerSignedItem struct {
	DigestID          uint64          `cbor:"digestID"`
	Random            []byte          `cbor:"random"`
	ElementIdentifier string          `cbor:"elementIdentifier"`
	ElementValue      cbor.RawMessage `cbor:"elementValue"`
}

// Parse decodes a decrypted DeviceResponse and extracts the selected
// document. It never returns a partial credential.
func Parse(plaintext []byte, opts ParseOptions) (*Credential, error) {
	if len(plaintext) == 0 {
		return nil, ErrNoDocuments
	}
	if opts.DocType == "" {
		opts.DocType = DefaultDocType
	}
	if opts.Namespace == "" {
		opts.Namespace = DefaultNamespace
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}

	var resp deviceResponse
	if err := decMode.Unmarshal(plaintext, &resp); err != nil {
		return nil, fmt.Errorf("%w: device response: %v", ErrMalformedResponse, err)
	}
	if len(resp.Documents) == 0 {
		return nil, fmt.Errorf("%w (status %d)", ErrNoDocuments, resp.Status)
	}

	for i := range resp.Documents {
		if resp.Documents[i].DocType == opts.DocType {
			return parseDocument(&resp.Documents[i], opts)
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrDocTypeNotFound, opts.DocType)
}

func parseDocument(doc *document, opts ParseOptions) (*Credential, error) {
	if len(doc.IssuerSigned.IssuerAuth) == 0 {
		return nil, fmt.Errorf("%w: missing", ErrMalformedIssuerAuth)
	}

	msg, err := decodeCOSESign1(doc.IssuerSigned.IssuerAuth)
	if err != nil {
		return nil, err
	}
	if len(msg.Signature) != SignatureSize {
		return nil, fmt.Errorf("%w: signature is %d bytes", ErrMalformedIssuerAuth, len(msg.Signature))
	}

	payload, err := msg.payloadBytes()
	if err != nil {
		return nil, err
	}

	mso, err := decodeMSO(payload)
	if err != nil {
		return nil, err
	}
	if mso.DocType != doc.DocType {
		return nil, fmt.Errorf("%w: %q != %q", ErrDocTypeMismatch, mso.DocType, doc.DocType)
	}

	validity, err := mso.ValidityInfo.decode()
	if err != nil {
		return nil, err
	}
	if err := validity.Check(opts.Now); err != nil {
		return nil, err
	}

	signed, err := msg.sigStructure(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedIssuerAuth, err)
	}

	items, ok := doc.IssuerSigned.NameSpaces[opts.Namespace]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNamespaceNotFound, opts.Namespace)
	}

	claims, err := parseClaims(items)
	if err != nil {
		return nil, err
	}

	cred := &Credential{
		DocType:         doc.DocType,
		Namespace:       opts.Namespace,
		SignedDocument:  signed,
		Signature:       msg.Signature,
		Claims:          claims,
		DigestAlgorithm: mso.DigestAlgorithm,
		ValueDigests:    mso.ValueDigests[opts.Namespace],
		Validity:        validity,
	}

	for _, id := range append([]string{ClaimDocumentNumber}, opts.Required...) {
		if _, err := cred.Claim(id); err != nil {
			return nil, err
		}
	}

	docNumber, ok := claims[ClaimDocumentNumber].Text()
	if !ok || docNumber == "" {
		return nil, fmt.Errorf("%w: %s is not a text string", ErrMalformedItem, ClaimDocumentNumber)
	}
	cred.DocumentNumber = []byte(docNumber)

	if cred.Certificate, err = msg.certificate(); err != nil {
		return nil, err
	}
	if cred.IssuerKey, err = ExtractPublicKey(cred.Certificate, opts.KeyScanFallback); err != nil {
		return nil, err
	}

	return cred, nil
}

func parseClaims(items []cbor.RawMessage) (map[string]*Claim, error) {
	claims := make(map[string]*Claim, len(items))

	for i, tagged := range items {
		raw, err := unwrapEncodedCBOR(tagged)
		if err != nil {
			return nil, fmt.Errorf("%w: item %d: %v", ErrMalformedItem, i, err)
		}

		var item issuerSignedItem
		if err := decMode.Unmarshal(raw, &item); err != nil {
			return nil, fmt.Errorf("%w: item %d: %v", ErrMalformedItem, i, err)
		}
		if item.ElementIdentifier == "" {
			return nil, fmt.Errorf("%w: item %d has no elementIdentifier", ErrMalformedItem, i)
		}
		if _, dup := claims[item.ElementIdentifier]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateClaim, item.ElementIdentifier)
		}

		var value any
		if len(item.ElementValue) > 0 {
			if err := decMode.Unmarshal(item.ElementValue, &value); err != nil {
				return nil, fmt.Errorf("%w: %s value: %v", ErrMalformedItem, item.ElementIdentifier, err)
			}
		}

		claims[item.ElementIdentifier] = &Claim{
			Identifier: item.ElementIdentifier,
			DigestID:   item.DigestID,
			Random:     item.Random,
			Value:      value,
			Raw:        raw,
			Tagged:     []byte(tagged),
		}
	}

	return claims, nil
}

package mdoc

import "errors"

var (
	// ErrInvalidNonce is returned when a session nonce is not NonceSize bytes.
	ErrInvalidNonce = errors.New("invalid nonce")

	// ErrInvalidOrigin is returned when the requesting origin is empty.
	ErrInvalidOrigin = errors.New("invalid origin")

	// ErrInvalidRecipientKey is returned when the recipient key is not an
	// uncompressed P-256 point.
	ErrInvalidRecipientKey = errors.New("invalid recipient public key")

	// ErrNoElements is returned when a device request names no data elements.
	ErrNoElements = errors.New("no data elements requested")

	// ErrUnsupportedProtocol is returned when an encrypted response names a
	// protocol other than "dcapi".
	ErrUnsupportedProtocol = errors.New("unsupported response protocol")

	// ErrNoData is returned when an encrypted response carries no
	// encapsulated key or ciphertext.
	ErrNoData = errors.New("response carries no data")

	// ErrMalformedResponse is returned when a CBOR envelope cannot be decoded.
	ErrMalformedResponse = errors.New("malformed response")

	// ErrNoDocuments is returned when a device response holds no documents.
	ErrNoDocuments = errors.New("device response holds no documents")

	// ErrDocTypeNotFound is returned when no document matches the expected type.
	ErrDocTypeNotFound = errors.New("document type not found")

	// ErrNamespaceNotFound is returned when the document lacks the namespace.
	ErrNamespaceNotFound = errors.New("namespace not found")

	// ErrMissingClaim is returned when a required claim is absent.
	ErrMissingClaim = errors.New("missing required claim")

	// ErrDuplicateClaim is returned when a namespace repeats an identifier.
	ErrDuplicateClaim = errors.New("duplicate claim")

	// ErrMalformedItem is returned when an issuer-signed item cannot be decoded.
	ErrMalformedItem = errors.New("malformed issuer-signed item")

	// ErrMalformedIssuerAuth is returned when issuerAuth is not a COSE_Sign1.
	ErrMalformedIssuerAuth = errors.New("malformed issuerAuth")

	// ErrMalformedMSO is returned when the mobile security object cannot be decoded.
	ErrMalformedMSO = errors.New("malformed mobile security object")

	// ErrDocTypeMismatch is returned when the MSO names a different docType
	// than the document that carries it.
	ErrDocTypeMismatch = errors.New("mobile security object docType mismatch")

	// ErrMissingCertificate is returned when neither header carries an x5chain.
	ErrMissingCertificate = errors.New("issuer certificate not found")

	// ErrPublicKeyNotFound is returned when no P-256 key can be located in
	// the issuer certificate.
	ErrPublicKeyNotFound = errors.New("issuer public key not found")

	// ErrExpired is returned when the validity window has already closed.
	ErrExpired = errors.New("credential expired")

	// ErrNotYetValid is returned when the validity window has not opened yet.
	ErrNotYetValid = errors.New("credential not yet valid")

	// ErrUnsupportedDigest is returned for digest algorithms other than
	// SHA-256, SHA-384 and SHA-512.
	ErrUnsupportedDigest = errors.New("unsupported digest algorithm")

	// ErrDigestMismatch is returned when a claim does not hash to the value
	// recorded in the mobile security object.
	ErrDigestMismatch = errors.New("claim digest mismatch")

	// ErrInvalidSignature is returned when the issuer signature does not verify.
	ErrInvalidSignature = errors.New("invalid issuer signature")
)

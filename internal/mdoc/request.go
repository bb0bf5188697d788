package mdoc

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

const (
	// ProtocolDCAPI identifies the Digital Credentials API handover.
	ProtocolDCAPI = "dcapi"

	// DefaultDocType is the ISO 18013-5 mDL document type.
	DefaultDocType = "org.iso.18013.5.1.mDL"

	// DefaultNamespace is the ISO 18013-5 mDL namespace.
	DefaultNamespace = "org.iso.18013.5.1"

	// DeviceRequestVersion is the only device request version emitted.
	DeviceRequestVersion = "1.0"
)

// COSE_Key labels and values for an EC2 P-256 key (RFC 9053).
const (
	coseKeyTypeEC2 = 2
	coseCurveP256  = 1
	coordinateSize = 32
)

type coseKey struct {
	Kty int    `cbor:"1,keyasint"`
	Crv int    `cbor:"-1,keyasint"`
	X   []byte `cbor:"-2,keyasint"`
	Y   []byte `cbor:"-3,keyasint"`
}

type encryptionParameters struct {
	Nonce              []byte  `cbor:"nonce"`
	RecipientPublicKey coseKey `cbor:"recipientPublicKey"`
}

type encryptionInfo struct {
	_          struct{} `cbor:",toarray"`
	Protocol   string
	Parameters encryptionParameters
}

// EncryptionInfo encodes the structure a wallet needs to seal its response:
//
//	["dcapi", {"nonce": bstr, "recipientPublicKey": COSE_Key}]
//
// recipient is the uncompressed SEC1 encoding of the session public key.
func EncryptionInfo(nonce, recipient []byte) ([]byte, error) {
	if len(nonce) != NonceSize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidNonce, len(nonce), NonceSize)
	}
	if len(recipient) != 1+2*coordinateSize || recipient[0] != 0x04 {
		return nil, ErrInvalidRecipientKey
	}

	return encMode.Marshal(encryptionInfo{
		Protocol: ProtocolDCAPI,
		Parameters: encryptionParameters{
			Nonce: nonce,
			RecipientPublicKey: coseKey{
				Kty: coseKeyTypeEC2,
				Crv: coseCurveP256,
				X:   recipient[1 : 1+coordinateSize],
				Y:   recipient[1+coordinateSize:],
			},
		},
	})
}

type itemsRequest struct {
	DocType    string                     `cbor:"docType"`
	NameSpaces map[string]map[string]bool `cbor:"nameSpaces"`
}

type docRequest struct {
	ItemsRequest cbor.RawMessage `cbor:"itemsRequest"`
}

type deviceRequest struct {
	Version     string       `cbor:"version"`
	DocRequests []docRequest `cbor:"docRequests"`
}

// DeviceRequest encodes a request for the named data elements of one
// namespace. Every element is requested with intentToRetain set to false.
func DeviceRequest(docType, namespace string, elements []string) ([]byte, error) {
	if len(elements) == 0 {
		return nil, ErrNoElements
	}
	if docType == "" {
		docType = DefaultDocType
	}
	if namespace == "" {
		namespace = DefaultNamespace
	}

	wanted := make(map[string]bool, len(elements))
	for _, e := range elements {
		wanted[e] = false
	}

	items, err := encMode.Marshal(itemsRequest{
		DocType:    docType,
		NameSpaces: map[string]map[string]bool{namespace: wanted},
	})
	if err != nil {
		return nil, err
	}

	tagged, err := encodedCBOR(items)
	if err != nil {
		return nil, err
	}

	return encMode.Marshal(deviceRequest{
		Version:     DeviceRequestVersion,
		DocRequests: []docRequest{{ItemsRequest: tagged}},
	})
}

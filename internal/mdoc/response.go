package mdoc

import (
	"fmt"
)

// EncryptedResponse is the wallet's sealed reply to an encryption info.
type EncryptedResponse struct {
	// Protocol is the handover protocol named by the wallet.
	Protocol string
	// Enc is the sender's ephemeral public key.
	Enc []byte
	// CipherText is the AES-GCM ciphertext including its tag.
	CipherText []byte
	// OriginInfo is the origin structure as echoed by the wallet, if any.
	OriginInfo []byte
}

type encryptedResponseParameters struct {
	Enc        []byte `cbor:"enc"`
	CipherText []byte `cbor:"cipherText"`
	OriginInfo []byte `cbor:"originInfo,omitempty"`
}

type encryptedResponse struct {
	_          struct{} `cbor:",toarray"`
	Protocol   string
	Parameters encryptedResponseParameters
}

// ParseEncryptedResponse decodes ["dcapi", {"enc", "cipherText", ?"originInfo"}].
func ParseEncryptedResponse(data []byte) (*EncryptedResponse, error) {
	if len(data) == 0 {
		return nil, ErrNoData
	}

	var wire encryptedResponse
	if err := decMode.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	if wire.Protocol != ProtocolDCAPI {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedProtocol, wire.Protocol)
	}

	if len(wire.Parameters.Enc) == 0 || len(wire.Parameters.CipherText) == 0 {
		return nil, ErrNoData
	}

	return &EncryptedResponse{
		Protocol:   wire.Protocol,
		Enc:        wire.Parameters.Enc,
		CipherText: wire.Parameters.CipherText,
		OriginInfo: wire.Parameters.OriginInfo,
	}, nil
}

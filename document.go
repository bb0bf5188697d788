package mdlproof

import (
	"bytes"

	"github.com/mdlproof/client-go/internal/crypto"
	"github.com/mdlproof/client-go/internal/mdoc"
)

// cborArray2 is the initial byte of a two-element CBOR array.
const cborArray2 = 0x82

// EncryptedDocument is the wallet's sealed response.
type EncryptedDocument struct {
	// Protocol is always "dcapi" after a successful parse.
	Protocol string
	// Enc is the wallet's ephemeral public key.
	Enc []byte
	// CipherText is the sealed DeviceResponse including the AEAD tag.
	CipherText []byte
	// OriginInfo is the origin structure echoed by the wallet, if any.
	OriginInfo []byte
}

// ParseEncryptedDocument decodes a wallet response. data may be the raw
// CBOR envelope or its base64url text as delivered by the browser.
func ParseEncryptedDocument(data []byte) (*EncryptedDocument, error) {
	if len(data) == 0 || data[0] != cborArray2 {
		// Only the text form may carry surrounding whitespace; the binary
		// envelope ends in a tag byte that can look like a space.
		text := bytes.TrimSpace(data)
		if len(text) == 0 {
			return nil, &Error{Kind: KindNoData, Err: mdoc.ErrNoData}
		}
		decoded, err := crypto.DecodeBase64(string(text))
		if err != nil {
			return nil, &ParseError{Stage: "envelope", Err: err}
		}
		data = decoded
	}

	resp, err := mdoc.ParseEncryptedResponse(data)
	if err != nil {
		return nil, wrapError("envelope", err)
	}

	return &EncryptedDocument{
		Protocol:   resp.Protocol,
		Enc:        resp.Enc,
		CipherText: resp.CipherText,
		OriginInfo: resp.OriginInfo,
	}, nil
}

package mdoc

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// headerX5Chain is the COSE header label for an X.509 certificate chain (RFC 9360).
const headerX5Chain = 33

const sigContextSign1 = "Signature1"

type coseSign1 struct {
	_           struct{} `cbor:",toarray"`
	Protected   []byte
	Unprotected map[any]cbor.RawMessage
	Payload     cbor.RawMessage
	Signature   []byte
}

// decodeCOSESign1 decodes a COSE_Sign1, optionally wrapped in tag 18.
func decodeCOSESign1(raw []byte) (*coseSign1, error) {
	if majorType(raw) == majorTag {
		var tag cbor.RawTag
		if err := decMode.Unmarshal(raw, &tag); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedIssuerAuth, err)
		}
		if tag.Number != tagCOSESign1 {
			return nil, fmt.Errorf("%w: unexpected tag %d", ErrMalformedIssuerAuth, tag.Number)
		}
		raw = tag.Content
	}

	var msg coseSign1
	if err := decMode.Unmarshal(raw, &msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedIssuerAuth, err)
	}
	return &msg, nil
}

// payloadBytes returns the signed payload. A byte string is unwrapped; an
// inline object is taken as its own encoding.
func (m *coseSign1) payloadBytes() ([]byte, error) {
	if len(m.Payload) == 0 || (len(m.Payload) == 1 && m.Payload[0] == cborNull) {
		return nil, fmt.Errorf("%w: detached payload", ErrMalformedIssuerAuth)
	}

	switch majorType(m.Payload) {
	case majorByteStr:
		var b []byte
		if err := decMode.Unmarshal(m.Payload, &b); err != nil {
			return nil, fmt.Errorf("%w: payload: %v", ErrMalformedIssuerAuth, err)
		}
		return b, nil
	default:
		return []byte(m.Payload), nil
	}
}

// sigStructure returns the bytes the issuer signed:
//
//	["Signature1", protected, h'', payload]
func (m *coseSign1) sigStructure(payload []byte) ([]byte, error) {
	protected := m.Protected
	if protected == nil {
		protected = []byte{}
	}
	return encMode.Marshal([]any{sigContextSign1, protected, []byte{}, payload})
}

// certificate returns the leaf certificate from the x5chain header,
// preferring the protected header.
func (m *coseSign1) certificate() ([]byte, error) {
	if len(m.Protected) > 0 {
		var protected map[any]cbor.RawMessage
		if err := decMode.Unmarshal(m.Protected, &protected); err != nil {
			return nil, fmt.Errorf("%w: protected header: %v", ErrMalformedIssuerAuth, err)
		}
		if raw, ok := headerValue(protected, headerX5Chain); ok {
			return leafCertificate(raw)
		}
	}

	if raw, ok := headerValue(m.Unprotected, headerX5Chain); ok {
		return leafCertificate(raw)
	}
	return nil, ErrMissingCertificate
}

func headerValue(h map[any]cbor.RawMessage, label int64) (cbor.RawMessage, bool) {
	for k, v := range h {
		switch key := k.(type) {
		case uint64:
			if label >= 0 && key == uint64(label) {
				return v, true
			}
		case int64:
			if key == label {
				return v, true
			}
		}
	}
	return nil, false
}

// leafCertificate accepts x5chain as a single byte string or an array whose
// first element is the leaf.
func leafCertificate(raw cbor.RawMessage) ([]byte, error) {
	var single []byte
	if err := decMode.Unmarshal(raw, &single); err == nil {
		if len(single) == 0 {
			return nil, ErrMissingCertificate
		}
		return single, nil
	}

	var chain [][]byte
	if err := decMode.Unmarshal(raw, &chain); err != nil {
		return nil, fmt.Errorf("%w: x5chain: %v", ErrMalformedIssuerAuth, err)
	}
	if len(chain) == 0 || len(chain[0]) == 0 {
		return nil, ErrMissingCertificate
	}
	return chain[0], nil
}

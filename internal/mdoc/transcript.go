package mdoc

import (
	"fmt"
)

const (
	// NonceSize is the length of the freshness nonce bound into the transcript.
	NonceSize = 12

	// HandoverFormat tags the browser handover inside the session transcript.
	HandoverFormat = "BrowserHandoverv1"
)

type originInfo struct {
	BaseURL string `cbor:"baseUrl"`
}

// OriginInfoBytes returns the CBOR encoding of {"baseUrl": origin}.
func OriginInfoBytes(origin string) ([]byte, error) {
	if origin == "" {
		return nil, ErrInvalidOrigin
	}
	return encMode.Marshal(originInfo{BaseURL: origin})
}

// SessionTranscript builds the AEAD associated data for a browser handover:
//
//	[null, null, ["BrowserHandoverv1", nonce, bstr(OriginInfo), bstr({}), enc]]
//
// The sender must have sealed with the identical bytes. A mismatch surfaces
// only as an AEAD failure.
func SessionTranscript(nonce []byte, origin string, enc []byte) ([]byte, error) {
	if len(nonce) != NonceSize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidNonce, len(nonce), NonceSize)
	}

	if len(enc) == 0 {
		return nil, fmt.Errorf("%w: empty encapsulated key", ErrNoData)
	}

	origInfo, err := OriginInfoBytes(origin)
	if err != nil {
		return nil, err
	}

	requesterIdentity, err := encMode.Marshal(map[string]any{})
	if err != nil {
		return nil, err
	}

	handover := []any{HandoverFormat, nonce, origInfo, requesterIdentity, enc}
	return encMode.Marshal([]any{nil, nil, handover})
}

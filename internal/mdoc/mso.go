package mdoc

import (
	"errors"
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// Tags for dates inside validityInfo (RFC 8949 §3.4.1, §3.4.2).
const (
	tagDateTimeString = 0
	tagEpochDateTime  = 1
)

type mobileSecurityObject struct {
	Version         string                       `cbor:"version"`
	DigestAlgorithm string                       `cbor:"digestAlgorithm"`
	DocType         string                       `cbor:"docType"`
	ValueDigests    map[string]map[uint64][]byte `cbor:"valueDigests"`
	ValidityInfo    validityInfo                 `cbor:"validityInfo"`
}

type validityInfo struct {
	Signed     cbor.RawMessage `cbor:"signed"`
	ValidFrom  cbor.RawMessage `cbor:"validFrom"`
	ValidUntil cbor.RawMessage `cbor:"validUntil"`
}

// Validity is the issuer-signed validity window.
type Validity struct {
	Signed     time.Time
	ValidFrom  time.Time
	ValidUntil time.Time
}

// Check reports ErrExpired or ErrNotYetValid when now is outside the window.
func (v Validity) Check(now time.Time) error {
	if now.After(v.ValidUntil) {
		return fmt.Errorf("%w: valid until %s", ErrExpired, v.ValidUntil.Format(time.RFC3339))
	}
	if now.Before(v.ValidFrom) {
		return fmt.Errorf("%w: valid from %s", ErrNotYetValid, v.ValidFrom.Format(time.RFC3339))
	}
	return nil
}

// decodeMSO decodes the payload as 24(bstr MSO) or as the MSO map itself.
func decodeMSO(payload []byte) (*mobileSecurityObject, error) {
	body := payload
	if majorType(payload) == majorTag {
		inner, err := unwrapEncodedCBOR(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedMSO, err)
		}
		body = inner
	}

	var mso mobileSecurityObject
	if err := decMode.Unmarshal(body, &mso); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMSO, err)
	}
	if mso.DigestAlgorithm == "" || mso.DocType == "" {
		return nil, fmt.Errorf("%w: missing digestAlgorithm or docType", ErrMalformedMSO)
	}
	return &mso, nil
}

func (vi validityInfo) decode() (Validity, error) {
	var v Validity
	var err error
	if v.Signed, err = decodeDate(vi.Signed); err != nil {
		return v, fmt.Errorf("%w: signed: %v", ErrMalformedMSO, err)
	}
	if v.ValidFrom, err = decodeDate(vi.ValidFrom); err != nil {
		return v, fmt.Errorf("%w: validFrom: %v", ErrMalformedMSO, err)
	}
	if v.ValidUntil, err = decodeDate(vi.ValidUntil); err != nil {
		return v, fmt.Errorf("%w: validUntil: %v", ErrMalformedMSO, err)
	}
	return v, nil
}

// decodeDate accepts 0(tstr), a bare RFC 3339 tstr, or 1(int/float).
func decodeDate(raw cbor.RawMessage) (time.Time, error) {
	if len(raw) == 0 {
		return time.Time{}, errors.New("missing date")
	}

	content := []byte(raw)
	number := uint64(tagDateTimeString)
	if majorType(raw) == majorTag {
		var tag cbor.RawTag
		if err := decMode.Unmarshal(raw, &tag); err != nil {
			return time.Time{}, err
		}
		number = tag.Number
		content = tag.Content
	}

	switch number {
	case tagDateTimeString:
		var s string
		if err := decMode.Unmarshal(content, &s); err != nil {
			return time.Time{}, err
		}
		return time.Parse(time.RFC3339, s)
	case tagEpochDateTime:
		var secs int64
		if err := decMode.Unmarshal(content, &secs); err == nil {
			return time.Unix(secs, 0).UTC(), nil
		}
		var f float64
		if err := decMode.Unmarshal(content, &f); err != nil {
			return time.Time{}, err
		}
		sec := int64(f)
		return time.Unix(sec, int64((f-float64(sec))*1e9)).UTC(), nil
	default:
		return time.Time{}, fmt.Errorf("unexpected date tag %d", number)
	}
}

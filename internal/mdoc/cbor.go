package mdoc

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

const (
	// tagEncodedCBOR marks a byte string holding embedded CBOR (RFC 8949 §3.4.5.1).
	tagEncodedCBOR = 24
	// tagCOSESign1 marks a COSE_Sign1 structure (RFC 9052).
	tagCOSESign1 = 18

	majorTypeShift = 5
	majorByteStr   = 2
	majorTag       = 6

	cborNull = 0xf6
)

// encMode encodes with the core deterministic rules so that transcripts and
// requests are byte-stable.
var encMode = func() cbor.EncMode {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	return em
}()

var decMode = func() cbor.DecMode {
	dm, err := cbor.DecOptions{
		DupMapKey:       cbor.DupMapKeyEnforcedAPF,
		MaxNestedLevels: 32,
	}.DecMode()
	if err != nil {
		panic(err)
	}
	return dm
}()

func majorType(raw []byte) byte {
	if len(raw) == 0 {
		return 0xff
	}
	return raw[0] >> majorTypeShift
}

// encodedCBOR wraps b as 24(bstr b).
func encodedCBOR(b []byte) (cbor.RawMessage, error) {
	return encMode.Marshal(cbor.Tag{Number: tagEncodedCBOR, Content: b})
}

// unwrapEncodedCBOR returns the embedded bytes of 24(bstr). A bare byte
// string is accepted as well.
func unwrapEncodedCBOR(raw []byte) ([]byte, error) {
	content := raw
	if majorType(raw) == majorTag {
		var tag cbor.RawTag
		if err := decMode.Unmarshal(raw, &tag); err != nil {
			return nil, err
		}
		if tag.Number != tagEncodedCBOR {
			return nil, fmt.Errorf("unexpected tag %d", tag.Number)
		}
		content = tag.Content
	}

	var b []byte
	if err := decMode.Unmarshal(content, &b); err != nil {
		return nil, err
	}
	return b, nil
}

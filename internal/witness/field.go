package witness

import (
	"crypto"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/bytemare/hash"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// AddressSize is the length of an account address.
const AddressSize = 20

// FieldFromBytes interprets b as a big-endian integer reduced modulo the
// BN254 scalar field order.
func FieldFromBytes(b []byte) fr.Element {
	var e fr.Element
	e.SetBytes(b)
	return e
}

// EventIDField hashes an application event identifier with SHA-256 and
// reduces the digest into the field.
func EventIDField(eventID string) (fr.Element, error) {
	if eventID == "" {
		return fr.Element{}, ErrEmptyEventID
	}
	h := hash.FromCrypto(crypto.SHA256).GetHashFunction()
	_, _ = h.Write([]byte(eventID))
	return FieldFromBytes(h.Sum(nil)), nil
}

// AddressField parses a 0x-prefixed 20-byte hex address into the field.
func AddressField(address string) (fr.Element, error) {
	if !strings.HasPrefix(address, "0x") && !strings.HasPrefix(address, "0X") {
		return fr.Element{}, fmt.Errorf("%w: missing 0x prefix", ErrInvalidAddress)
	}
	raw, err := hex.DecodeString(address[2:])
	if err != nil {
		return fr.Element{}, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	if len(raw) != AddressSize {
		return fr.Element{}, fmt.Errorf("%w: %d bytes", ErrInvalidAddress, len(raw))
	}
	return FieldFromBytes(raw), nil
}

// ProofDate encodes the UTC calendar date of t as YYYYMMDD.
func ProofDate(t time.Time) uint64 {
	y, m, d := t.UTC().Date()
	return uint64(y)*10000 + uint64(m)*100 + uint64(d)
}

// FieldHex renders e as 0x followed by 64 hex digits.
func FieldHex(e fr.Element) string {
	b := e.Bytes()
	return "0x" + hex.EncodeToString(b[:])
}

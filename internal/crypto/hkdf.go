package crypto

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// maxExpandLength bounds LabeledExpand: HKDF stops at 255 blocks and the
// length prefix is two bytes.
const maxExpandLength = 255 * HashSize

// LabeledExtract implements RFC 9180 LabeledExtract over HKDF-SHA256:
//
//	labeled_ikm = "HPKE-v1" || suite_id || label || ikm
//	return Extract(salt, labeled_ikm)
func LabeledExtract(suiteID, salt []byte, label string, ikm []byte) []byte {
	labeledIKM := make([]byte, 0, len(versionLabel)+len(suiteID)+len(label)+len(ikm))
	labeledIKM = append(labeledIKM, versionLabel...)
	labeledIKM = append(labeledIKM, suiteID...)
	labeledIKM = append(labeledIKM, label...)
	labeledIKM = append(labeledIKM, ikm...)

	return hkdf.Extract(sha256.New, labeledIKM, salt)
}

// LabeledExpand implements RFC 9180 LabeledExpand over HKDF-SHA256:
//
//	labeled_info = I2OSP(L, 2) || "HPKE-v1" || suite_id || label || info
//	return Expand(prk, labeled_info, L)
func LabeledExpand(suiteID, prk []byte, label string, info []byte, length int) ([]byte, error) {
	if length <= 0 || length > maxExpandLength {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLength, length)
	}

	labeledInfo := make([]byte, 2, 2+len(versionLabel)+len(suiteID)+len(label)+len(info))
	binary.BigEndian.PutUint16(labeledInfo, uint16(length))
	labeledInfo = append(labeledInfo, versionLabel...)
	labeledInfo = append(labeledInfo, suiteID...)
	labeledInfo = append(labeledInfo, label...)
	labeledInfo = append(labeledInfo, info...)

	reader := hkdf.Expand(sha256.New, prk, labeledInfo)
	out := make([]byte, length)
	if _, err := io.ReadFull(reader, out); err != nil {
		return nil, fmt.Errorf("failed to expand %q: %w", label, err)
	}

	return out, nil
}

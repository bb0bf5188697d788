package crypto

import (
	"encoding/binary"
	"math"
)

// ReceiverContext is the recipient side of an HPKE base-mode context.
// It is not safe for concurrent use.
type ReceiverContext struct {
	key            []byte
	baseNonce      []byte
	exporterSecret []byte
	seq            uint64
}

// KeyScheduleR runs the RFC 9180 key schedule in base mode:
//
//	psk_id_hash = LabeledExtract("", "psk_id_hash", "")
//	info_hash = LabeledExtract("", "info_hash", info)
//	ks_context = mode || psk_id_hash || info_hash
//	secret = LabeledExtract(shared_secret, "secret", "")
//	key = LabeledExpand(secret, "key", ks_context, Nk)
//	base_nonce = LabeledExpand(secret, "base_nonce", ks_context, Nn)
//	exporter_secret = LabeledExpand(secret, "exp", ks_context, Nh)
func KeyScheduleR(sharedSecret, info []byte) (*ReceiverContext, error) {
	ksContext := keyScheduleContext(info)
	secret := LabeledExtract(SuiteID, sharedSecret, "secret", nil)

	key, err := LabeledExpand(SuiteID, secret, "key", ksContext, AESKeySize)
	if err != nil {
		return nil, err
	}

	baseNonce, err := LabeledExpand(SuiteID, secret, "base_nonce", ksContext, AESNonceSize)
	if err != nil {
		return nil, err
	}

	exporterSecret, err := LabeledExpand(SuiteID, secret, "exp", ksContext, HashSize)
	if err != nil {
		return nil, err
	}

	return &ReceiverContext{
		key:            key,
		baseNonce:      baseNonce,
		exporterSecret: exporterSecret,
	}, nil
}

// keyScheduleContext returns ks_context for base mode.
func keyScheduleContext(info []byte) []byte {
	pskIDHash := LabeledExtract(SuiteID, nil, "psk_id_hash", nil)
	infoHash := LabeledExtract(SuiteID, nil, "info_hash", info)

	ksContext := make([]byte, 0, 1+len(pskIDHash)+len(infoHash))
	ksContext = append(ksContext, ModeBase)
	ksContext = append(ksContext, pskIDHash...)
	ksContext = append(ksContext, infoHash...)
	return ksContext
}

// computeNonce returns base_nonce XOR I2OSP(seq, Nn).
func (c *ReceiverContext) computeNonce() []byte {
	var seqBytes [AESNonceSize]byte
	binary.BigEndian.PutUint64(seqBytes[AESNonceSize-8:], c.seq)

	nonce := make([]byte, AESNonceSize)
	for i := range nonce {
		nonce[i] = c.baseNonce[i] ^ seqBytes[i]
	}
	return nonce
}

// Open authenticates and decrypts one message. The sequence number only
// advances on success.
func (c *ReceiverContext) Open(aad, ciphertext []byte) ([]byte, error) {
	if c.seq == math.MaxUint64 {
		return nil, ErrMessageLimitReached
	}

	plaintext, err := decryptAESGCM(c.key, c.computeNonce(), aad, ciphertext)
	if err != nil {
		return nil, err
	}

	c.seq++
	return plaintext, nil
}

// export derives a secret from the context per RFC 9180 section 5.3.
func (c *ReceiverContext) export(exporterContext []byte, length int) ([]byte, error) {
	return LabeledExpand(SuiteID, c.exporterSecret, "sec", exporterContext, length)
}

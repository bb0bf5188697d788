// Package crypto provides the HPKE receiver primitives used to open mDL
// responses. It implements RFC 9180 base mode for a single cipher suite and
// keeps every step a stateless function over explicit byte inputs.
//
// # Algorithm Suite
//
//   - DHKEM(P-256, HKDF-SHA256), kem_id 0x0010: ephemeral-static ECDH with
//     the receiver's session key; [Decap] recovers the shared secret.
//
//   - HKDF-SHA256, kdf_id 0x0001: [LabeledExtract] and [LabeledExpand] add the
//     "HPKE-v1" prefix and a suite identifier to every derivation.
//
//   - AES-128-GCM, aead_id 0x0001: authenticated decryption keyed by
//     [KeyScheduleR]. The associated data is supplied by the caller.
//
// # Security Model
//
// A decryption failure is always fatal for the message. The package does not
// distinguish a forged tag from a wrong key or a wrong associated-data block,
// so callers must treat [ErrDecryptionFailed] as possibly a transcript mismatch.
//
// Receiver key pairs are meant to be used once. Do not keep a [Keypair]
// around after its message has been opened.
//
// # Base64 Encoding
//
// [ToBase64URL] encodes protocol values; [DecodeBase64] accepts any base64
// variant a wallet transport might produce.
package crypto

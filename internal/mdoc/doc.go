// Package mdoc implements the ISO 18013-5/-7 structures exchanged with a
// wallet over the Digital Credentials API: the encryption info and device
// request sent to the wallet, the encrypted response envelope, the session
// transcript used as AEAD associated data, and a fixed-schema parser for the
// decrypted DeviceResponse.
//
// The parser walks one known shape. It extracts the issuer Sig_structure,
// the raw r || s signature, each IssuerSignedItem as issued, the validity
// window, and the issuer's P-256 key from the leaf certificate. It does not
// validate certificate chains, and it leaves digest and signature checks to
// the caller (see Credential.VerifyDigest and Credential.VerifySignature).
package mdoc

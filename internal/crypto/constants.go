package crypto

const (
	// KEMID identifies DHKEM(P-256, HKDF-SHA256).
	KEMID uint16 = 0x0010
	// KDFID identifies HKDF-SHA256.
	KDFID uint16 = 0x0001
	// AEADID identifies AES-128-GCM.
	AEADID uint16 = 0x0001

	// ModeBase is the HPKE mode byte for base mode (no PSK, no sender auth).
	ModeBase byte = 0x00

	// SharedSecretSize is Nsecret, the KEM shared secret length in bytes.
	SharedSecretSize = 32
	// EncapsulatedKeySize is Nenc, the length of an uncompressed P-256 point.
	EncapsulatedKeySize = 65
	// PublicKeySize is Npk, the serialized receiver public key length.
	PublicKeySize = 65
	// PrivateKeySize is Nsk, the serialized receiver private key length.
	PrivateKeySize = 32
	// HashSize is Nh, the output size of the KDF's extract step.
	HashSize = 32

	// AESKeySize is Nk, the size of an AES-128 key in bytes.
	AESKeySize = 16
	// AESNonceSize is Nn, the size of an AES-GCM nonce in bytes.
	AESNonceSize = 12
	// AESTagSize is Nt, the size of an AES-GCM authentication tag in bytes.
	AESTagSize = 16

	// uncompressedPointMarker prefixes SEC1 uncompressed points.
	uncompressedPointMarker = 0x04
)

// AlgsCiphersuite is the canonical string representation of the algorithm suite.
var AlgsCiphersuite = "DHKEM(P-256,HKDF-SHA256):HKDF-SHA256:AES-128-GCM"

// versionLabel is the RFC 9180 label prefix for every labeled KDF call.
var versionLabel = []byte("HPKE-v1")

// KEMSuiteID is the suite_id used inside the KEM: "KEM" || I2OSP(kem_id, 2).
var KEMSuiteID = []byte{'K', 'E', 'M', byte(KEMID >> 8), byte(KEMID)}

// SuiteID is the suite_id used by the key schedule:
// "HPKE" || I2OSP(kem_id, 2) || I2OSP(kdf_id, 2) || I2OSP(aead_id, 2).
var SuiteID = []byte{
	'H', 'P', 'K', 'E',
	byte(KEMID >> 8), byte(KEMID),
	byte(KDFID >> 8), byte(KDFID),
	byte(AEADID >> 8), byte(AEADID),
}

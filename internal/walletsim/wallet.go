package walletsim

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"github.com/cloudflare/circl/hpke"
	"github.com/fxamacker/cbor/v2"
)

const protocolDCAPI = "dcapi"

var encMode = func() cbor.EncMode {
	em, err := cbor.EncOptions{}.EncMode()
	if err != nil {
		panic(err)
	}
	return em
}()

var suite = hpke.NewSuite(hpke.KEM_P256_HKDF_SHA256, hpke.KDF_HKDF_SHA256, hpke.AEAD_AES128GCM)

// Request is what a wallet learns from the verifier's encryption info.
type Request struct {
	Nonce              []byte
	RecipientPublicKey []byte
}

type coseKey struct {
	Kty int    `cbor:"1,keyasint"`
	Crv int    `cbor:"-1,keyasint"`
	X   []byte `cbor:"-2,keyasint"`
	Y   []byte `cbor:"-3,keyasint"`
}

type encryptionInfo struct {
	_          struct{} `cbor:",toarray"`
	Protocol   string
	Parameters struct {
		Nonce              []byte  `cbor:"nonce"`
		RecipientPublicKey coseKey `cbor:"recipientPublicKey"`
	}
}

// ReadEncryptionInfo decodes ["dcapi", {"nonce", "recipientPublicKey"}].
func ReadEncryptionInfo(data []byte) (*Request, error) {
	var info encryptionInfo
	if err := cbor.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("decode encryption info: %w", err)
	}
	if info.Protocol != protocolDCAPI {
		return nil, fmt.Errorf("unexpected protocol %q", info.Protocol)
	}

	key := info.Parameters.RecipientPublicKey
	if key.Kty != 2 || key.Crv != 1 || len(key.X) != 32 || len(key.Y) != 32 {
		return nil, errors.New("recipient key is not an EC2 P-256 COSE_Key")
	}

	pub := make([]byte, 0, 65)
	pub = append(pub, 0x04)
	pub = append(pub, key.X...)
	pub = append(pub, key.Y...)

	return &Request{Nonce: info.Parameters.Nonce, RecipientPublicKey: pub}, nil
}

// SealOptions controls how a response is sealed.
type SealOptions struct {
	// Origin is the origin the wallet believes it is answering.
	Origin string
	// Info is the HPKE info string; empty by default.
	Info []byte
	// EchoOriginInfo includes the origin structure in the response.
	EchoOriginInfo bool
	// Protocol overrides "dcapi" in the response envelope.
	Protocol string
	// Rand supplies the ephemeral key randomness; crypto/rand by default.
	Rand io.Reader
}

type encryptedResponse struct {
	_          struct{} `cbor:",toarray"`
	Protocol   string
	Parameters encryptedParameters
}

type encryptedParameters struct {
	Enc        []byte `cbor:"enc"`
	CipherText []byte `cbor:"cipherText"`
	OriginInfo []byte `cbor:"originInfo,omitempty"`
}

// Seal encrypts plaintext to the request's recipient key with the session
// transcript as associated data and returns the encoded response envelope.
func Seal(req *Request, plaintext []byte, opts SealOptions) ([]byte, error) {
	pkR, err := hpke.KEM_P256_HKDF_SHA256.Scheme().UnmarshalBinaryPublicKey(req.RecipientPublicKey)
	if err != nil {
		return nil, fmt.Errorf("recipient key: %w", err)
	}

	sender, err := suite.NewSender(pkR, opts.Info)
	if err != nil {
		return nil, err
	}

	rnd := opts.Rand
	if rnd == nil {
		rnd = rand.Reader
	}
	enc, sealer, err := sender.Setup(rnd)
	if err != nil {
		return nil, fmt.Errorf("hpke setup: %w", err)
	}

	origin, err := encMode.Marshal(map[string]string{"baseUrl": opts.Origin})
	if err != nil {
		return nil, err
	}

	transcript, err := Transcript(req.Nonce, origin, enc)
	if err != nil {
		return nil, err
	}

	ct, err := sealer.Seal(plaintext, transcript)
	if err != nil {
		return nil, fmt.Errorf("hpke seal: %w", err)
	}

	resp := encryptedResponse{
		Protocol:   protocolDCAPI,
		Parameters: encryptedParameters{Enc: enc, CipherText: ct},
	}
	if opts.Protocol != "" {
		resp.Protocol = opts.Protocol
	}
	if opts.EchoOriginInfo {
		resp.Parameters.OriginInfo = origin
	}
	return encMode.Marshal(resp)
}

// Transcript encodes [null, null, ["BrowserHandoverv1", nonce, originInfo, {}, enc]].
func Transcript(nonce, originInfo, enc []byte) ([]byte, error) {
	requester, err := encMode.Marshal(map[string]string{})
	if err != nil {
		return nil, err
	}
	return encMode.Marshal([]any{nil, nil, []any{"BrowserHandoverv1", nonce, originInfo, requester, enc}})
}

package mdlproof

import (
	"bytes"
	"sync"

	"github.com/mdlproof/client-go/internal/crypto"
	"github.com/mdlproof/client-go/internal/mdoc"
)

// Session is one presentation attempt: an ephemeral P-256 key pair, a
// freshness nonce and the origin the request is made from.
//
// A Session can be opened once. Any retry, including after a failed
// decryption, needs a new Session.
type Session struct {
	origin    string
	nonce     []byte
	info      []byte
	docType   string
	namespace string

	mu       sync.Mutex
	keypair  *crypto.Keypair
	consumed bool
}

func newSession(origin string, cfg *config) (*Session, error) {
	if origin == "" {
		return nil, mdoc.ErrInvalidOrigin
	}

	keypair, err := crypto.GenerateKeypair()
	if err != nil {
		return nil, err
	}
	nonce, err := crypto.RandomBytes(mdoc.NonceSize)
	if err != nil {
		return nil, err
	}

	return &Session{
		origin:    origin,
		nonce:     nonce,
		info:      cfg.info,
		docType:   cfg.docType,
		namespace: cfg.namespace,
		keypair:   keypair,
	}, nil
}

// Origin returns the origin bound into the session transcript.
func (s *Session) Origin() string {
	return s.origin
}

// Nonce returns a copy of the freshness nonce.
func (s *Session) Nonce() []byte {
	return bytes.Clone(s.nonce)
}

// PublicKey returns the uncompressed session public key, or nil once the
// session is consumed.
func (s *Session) PublicKey() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.keypair == nil {
		return nil
	}
	return bytes.Clone(s.keypair.PublicKey)
}

// EncryptionInfo returns the CBOR structure the wallet seals its response to.
func (s *Session) EncryptionInfo() ([]byte, error) {
	pub := s.PublicKey()
	if pub == nil {
		return nil, ErrSessionConsumed
	}
	return mdoc.EncryptionInfo(s.nonce, pub)
}

// DeviceRequest returns the CBOR device request asking for elements.
func (s *Session) DeviceRequest(elements []string) ([]byte, error) {
	return mdoc.DeviceRequest(s.docType, s.namespace, elements)
}

// Transcript returns the session transcript for the given encapsulated key.
func (s *Session) Transcript(enc []byte) ([]byte, error) {
	return mdoc.SessionTranscript(s.nonce, s.origin, enc)
}

// Open decrypts doc and returns the DeviceResponse plaintext. The key pair
// is dropped whether or not decryption succeeds.
func (s *Session) Open(doc *EncryptedDocument) ([]byte, error) {
	keypair, err := s.take()
	if err != nil {
		return nil, err
	}
	if doc == nil || len(doc.Enc) == 0 || len(doc.CipherText) == 0 {
		return nil, &Error{Kind: KindNoData, Err: mdoc.ErrNoData}
	}

	transcript, err := s.Transcript(doc.Enc)
	if err != nil {
		return nil, wrapError("transcript", err)
	}

	plaintext, err := crypto.Open(doc.Enc, keypair.PrivateKey(), keypair.PublicKey, s.info, transcript, doc.CipherText)
	if err != nil {
		return nil, wrapError("hpke", err)
	}
	return plaintext, nil
}

// Discard drops the key pair without opening anything.
func (s *Session) Discard() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.keypair = nil
	s.consumed = true
}

// Consumed reports whether the session has been opened or discarded.
func (s *Session) Consumed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.consumed
}

func (s *Session) take() (*crypto.Keypair, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.consumed || s.keypair == nil {
		return nil, ErrSessionConsumed
	}
	keypair := s.keypair
	s.keypair = nil
	s.consumed = true
	return keypair, nil
}

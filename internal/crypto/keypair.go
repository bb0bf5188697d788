package crypto

import (
	"crypto/ecdh"
	"crypto/rand"
	"io"
)

// randReader is the random source used for key generation.
// It defaults to nil (which uses crypto/rand) but can be overridden for testing.
var randReader io.Reader

func random() io.Reader {
	if randReader != nil {
		return randReader
	}
	return rand.Reader
}

// RandomBytes returns n bytes from the package random source.
func RandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(random(), b); err != nil {
		return nil, err
	}
	return b, nil
}

// Keypair is a P-256 receiver key pair.
type Keypair struct {
	// PublicKey is the uncompressed SEC1 encoding of the public key (pkRm).
	PublicKey []byte

	private *ecdh.PrivateKey
}

// GenerateKeypair creates a new P-256 receiver key pair.
func GenerateKeypair() (*Keypair, error) {
	priv, err := ecdh.P256().GenerateKey(random())
	if err != nil {
		return nil, err
	}
	return newKeypair(priv), nil
}

// newKeypairFromBytes reconstructs a key pair from a 32-byte private scalar.
func newKeypairFromBytes(privateKeyBytes []byte) (*Keypair, error) {
	if len(privateKeyBytes) != PrivateKeySize {
		return nil, ErrInvalidPrivateKeySize
	}

	priv, err := ecdh.P256().NewPrivateKey(privateKeyBytes)
	if err != nil {
		return nil, ErrInvalidPrivateKey
	}
	return newKeypair(priv), nil
}

func newKeypair(priv *ecdh.PrivateKey) *Keypair {
	return &Keypair{PublicKey: priv.PublicKey().Bytes(), private: priv}
}

// PrivateKey returns the underlying ECDH private key.
func (k *Keypair) PrivateKey() *ecdh.PrivateKey {
	return k.private
}

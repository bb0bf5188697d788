package crypto

import (
	"bytes"
	"crypto/ecdh"
	"errors"
	"testing"
)

func TestGenerateKeypair(t *testing.T) {
	kp, err := GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair() error = %v", err)
	}

	// Check key sizes
	if len(kp.PublicKey) != PublicKeySize {
		t.Errorf("PublicKey size = %d, want %d", len(kp.PublicKey), PublicKeySize)
	}

	if len(kp.PrivateKey().Bytes()) != PrivateKeySize {
		t.Errorf("private key size = %d, want %d", len(kp.PrivateKey().Bytes()), PrivateKeySize)
	}

	if kp.PublicKey[0] != 0x04 {
		t.Errorf("PublicKey prefix = %#x, want 0x04", kp.PublicKey[0])
	}

	if !bytes.Equal(kp.PrivateKey().PublicKey().Bytes(), kp.PublicKey) {
		t.Error("PublicKey does not match the private key")
	}
}

func TestGenerateKeypair_Uniqueness(t *testing.T) {
	kp1, err := GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair() error = %v", err)
	}

	kp2, err := GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair() error = %v", err)
	}

	if bytes.Equal(kp1.PublicKey, kp2.PublicKey) {
		t.Error("two generated keypairs have identical public keys")
	}
}

func TestKeypairFromBytes(t *testing.T) {
	original, err := GenerateKeypair()
	if err != nil {
		t.Fatal(err)
	}

	restored, err := newKeypairFromBytes(original.PrivateKey().Bytes())
	if err != nil {
		t.Fatalf("newKeypairFromBytes() error = %v", err)
	}

	if !bytes.Equal(restored.PublicKey, original.PublicKey) {
		t.Error("restored public key does not match original")
	}
}

func TestKeypairFromBytes_RFCVector(t *testing.T) {
	skRm := mustHex(t, "f3ce7fdae57e1a310d87f1ebbde6f328be0a99cdbcadf4d6589cf29de4b8ffd2")
	pkRm := mustHex(t, "04fe8c19ce0905191ebc298a9245792531f26f0cece2460639e8bc39cb7f706a826a779b4cf969b8a0e539c7f62fb3d30ad6aa8f80e30f1d128aafd68a2ce72ea0")

	kp, err := newKeypairFromBytes(skRm)
	if err != nil {
		t.Fatalf("newKeypairFromBytes() error = %v", err)
	}
	if !bytes.Equal(kp.PublicKey, pkRm) {
		t.Errorf("PublicKey = %x, want %x", kp.PublicKey, pkRm)
	}
}

func TestKeypairFromBytes_Invalid(t *testing.T) {
	tests := []struct {
		name string
		sk   []byte
		want error
	}{
		{"empty", nil, ErrInvalidPrivateKeySize},
		{"short", make([]byte, 31), ErrInvalidPrivateKeySize},
		{"long", make([]byte, 33), ErrInvalidPrivateKeySize},
		{"zero scalar", make([]byte, 32), ErrInvalidPrivateKey},
		{"scalar above order", bytes.Repeat([]byte{0xff}, 32), ErrInvalidPrivateKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newKeypairFromBytes(tt.sk)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestSetRandReaderForTesting_Restores(t *testing.T) {
	restore := SetRandReaderForTesting(bytes.NewReader(nil))
	if randReader == nil {
		t.Fatal("override was not installed")
	}
	restore()
	if randReader != nil {
		t.Error("restore did not reinstate the default reader")
	}
}

func TestRandomBytes(t *testing.T) {
	restore := SetRandReaderForTesting(bytes.NewReader([]byte{1, 2, 3, 4, 5}))
	defer restore()

	b, err := RandomBytes(4)
	if err != nil {
		t.Fatalf("RandomBytes() error = %v", err)
	}
	if !bytes.Equal(b, []byte{1, 2, 3, 4}) {
		t.Errorf("RandomBytes() = %x, want 01020304", b)
	}

	if _, err := RandomBytes(4); err == nil {
		t.Error("RandomBytes() on an exhausted reader should fail")
	}
}

func TestKeypair_PrivateKeyCurve(t *testing.T) {
	kp, err := GenerateKeypair()
	if err != nil {
		t.Fatal(err)
	}
	if kp.PrivateKey().Curve() != ecdh.P256() {
		t.Error("keypair is not on P-256")
	}
}

func BenchmarkGenerateKeypair(b *testing.B) {
	for i := 0; i < b.N; i++ {
		if _, err := GenerateKeypair(); err != nil {
			b.Fatal(err)
		}
	}
}

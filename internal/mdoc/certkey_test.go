package mdoc

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"errors"
	"math/big"
	"testing"
	"time"
)

func selfSigned(t *testing.T, curve elliptic.Curve) ([]byte, *ecdsa.PrivateKey) {
	t.Helper()

	key, err := ecdsa.GenerateKey(curve, rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(42),
		Subject:      pkix.Name{CommonName: "issuer"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	if err != nil {
		t.Fatal(err)
	}
	return der, key
}

func TestExtractPublicKey(t *testing.T) {
	der, key := selfSigned(t, elliptic.P256())
	want, err := key.PublicKey.Bytes()
	if err != nil {
		t.Fatal(err)
	}

	for _, fallback := range []bool{false, true} {
		got, err := ExtractPublicKey(der, fallback)
		if err != nil {
			t.Fatalf("ExtractPublicKey(fallback=%v) error = %v", fallback, err)
		}
		if !bytes.Equal(got.Bytes(), want) {
			t.Errorf("ExtractPublicKey(fallback=%v) = %x, want %x", fallback, got.Bytes(), want)
		}
	}
}

func TestExtractPublicKey_RejectsOtherCurves(t *testing.T) {
	der, _ := selfSigned(t, elliptic.P384())

	if _, err := ExtractPublicKey(der, false); !errors.Is(err, ErrPublicKeyNotFound) {
		t.Errorf("expected ErrPublicKeyNotFound, got %v", err)
	}
}

func TestExtractPublicKey_Malformed(t *testing.T) {
	der, _ := selfSigned(t, elliptic.P256())

	tests := []struct {
		name string
		der  []byte
	}{
		{"empty", nil},
		{"truncated", der[:len(der)/2]},
		{"not der", []byte("-----BEGIN CERTIFICATE-----")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ExtractPublicKey(tt.der, false); !errors.Is(err, ErrPublicKeyNotFound) {
				t.Errorf("expected ErrPublicKeyNotFound, got %v", err)
			}
		})
	}
}

func TestScanPublicKey(t *testing.T) {
	_, key := selfSigned(t, elliptic.P256())
	point, err := key.PublicKey.Bytes()
	if err != nil {
		t.Fatal(err)
	}

	offCurve := bytes.Clone(point)
	offCurve[64] ^= 0x01

	zeroX := bytes.Clone(point)
	copy(zeroX[1:33], make([]byte, 32))

	tests := []struct {
		name    string
		data    []byte
		wantErr bool
	}{
		{"bare length prefix", append([]byte{0xaa, 0x41}, point...), false},
		{"bit string prefix", append([]byte{0x03, 0x42, 0x00}, point...), false},
		{"no prefix", append([]byte{0xaa, 0xbb}, point...), true},
		{"off curve", append([]byte{0xaa, 0x41}, offCurve...), true},
		{"zero coordinate", append([]byte{0xaa, 0x41}, zeroX...), true},
		{"truncated", append([]byte{0xaa, 0x41}, point[:64]...), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := scanPublicKey(tt.data)
			if tt.wantErr {
				if !errors.Is(err, ErrPublicKeyNotFound) {
					t.Errorf("expected ErrPublicKeyNotFound, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("scanPublicKey() error = %v", err)
			}
			if !bytes.Equal(got, point) {
				t.Errorf("scanPublicKey() = %x, want %x", got, point)
			}
		})
	}
}

package mdoc

import (
	"bytes"
	"crypto/sha256"
	"crypto/sha512"
	"errors"
	"testing"

	"github.com/mdlproof/client-go/internal/walletsim"
)

func TestDigest(t *testing.T) {
	data := []byte("issuer signed item")
	s256 := sha256.Sum256(data)
	s384 := sha512.Sum384(data)
	s512 := sha512.Sum512(data)

	tests := []struct {
		algorithm string
		want      []byte
	}{
		{"SHA-256", s256[:]},
		{"sha-256", s256[:]},
		{"SHA-384", s384[:]},
		{"SHA-512", s512[:]},
	}

	for _, tt := range tests {
		t.Run(tt.algorithm, func(t *testing.T) {
			got, err := Digest(tt.algorithm, data)
			if err != nil {
				t.Fatalf("Digest() error = %v", err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("Digest() = %x, want %x", got, tt.want)
			}
		})
	}
}

func TestDigest_Unsupported(t *testing.T) {
	for _, name := range []string{"", "MD5", "SHA-1", "SHA3-256"} {
		if _, err := Digest(name, nil); !errors.Is(err, ErrUnsupportedDigest) {
			t.Errorf("Digest(%q): expected ErrUnsupportedDigest, got %v", name, err)
		}
	}
}

func TestVerifySignature_Tampered(t *testing.T) {
	issuer := newIssuer(t)

	cred, err := Parse(issue(t, issuer, walletsim.DocumentOptions{}), ParseOptions{})
	if err != nil {
		t.Fatal(err)
	}

	t.Run("document", func(t *testing.T) {
		c := *cred
		c.SignedDocument = bytes.Clone(cred.SignedDocument)
		c.SignedDocument[len(c.SignedDocument)-1] ^= 0x01
		if err := c.VerifySignature(); !errors.Is(err, ErrInvalidSignature) {
			t.Errorf("expected ErrInvalidSignature, got %v", err)
		}
	})

	t.Run("signature", func(t *testing.T) {
		c := *cred
		c.Signature = bytes.Clone(cred.Signature)
		c.Signature[0] ^= 0x01
		if err := c.VerifySignature(); !errors.Is(err, ErrInvalidSignature) {
			t.Errorf("expected ErrInvalidSignature, got %v", err)
		}
	})

	t.Run("other issuer", func(t *testing.T) {
		other, err := Parse(issue(t, newIssuer(t), walletsim.DocumentOptions{}), ParseOptions{})
		if err != nil {
			t.Fatal(err)
		}
		c := *cred
		c.IssuerKey = other.IssuerKey
		if err := c.VerifySignature(); !errors.Is(err, ErrInvalidSignature) {
			t.Errorf("expected ErrInvalidSignature, got %v", err)
		}
	})
}

func TestVerifyDigest_UnknownClaim(t *testing.T) {
	issuer := newIssuer(t)

	cred, err := Parse(issue(t, issuer, walletsim.DocumentOptions{}), ParseOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if err := cred.VerifyDigest("portrait"); !errors.Is(err, ErrMissingClaim) {
		t.Errorf("expected ErrMissingClaim, got %v", err)
	}
}

package walletsim

import (
	"bytes"
	"crypto/ecdh"
	"crypto/rand"
	"crypto/x509"
	"testing"

	"github.com/cloudflare/circl/hpke"
	"github.com/fxamacker/cbor/v2"
)

func TestNewIssuer(t *testing.T) {
	issuer, err := NewIssuer()
	if err != nil {
		t.Fatalf("NewIssuer() error = %v", err)
	}

	cert, err := x509.ParseCertificate(issuer.Certificate)
	if err != nil {
		t.Fatalf("ParseCertificate() error = %v", err)
	}
	if !cert.IsCA || cert.KeyUsage&x509.KeyUsageCertSign == 0 {
		t.Errorf("IsCA = %v, KeyUsage = %v", cert.IsCA, cert.KeyUsage)
	}
	if err := cert.CheckSignatureFrom(cert); err != nil {
		t.Errorf("certificate is not self-signed: %v", err)
	}

	if pub := issuer.PublicKey(); len(pub) != 65 || pub[0] != 0x04 {
		t.Errorf("PublicKey() = %x", pub)
	}
}

func TestIssue_ItemLayout(t *testing.T) {
	issuer, err := NewIssuer()
	if err != nil {
		t.Fatal(err)
	}

	data, err := issuer.Issue(DocumentOptions{})
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	var resp deviceResponse
	if err := cbor.Unmarshal(data, &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Documents) != 1 {
		t.Fatalf("documents = %d", len(resp.Documents))
	}

	items := resp.Documents[0].IssuerSigned.NameSpaces[NamespaceMDL]
	if len(items) != len(DefaultClaims()) {
		t.Fatalf("items = %d", len(items))
	}

	for _, tagged := range items {
		var tag cbor.RawTag
		if err := cbor.Unmarshal(tagged, &tag); err != nil {
			t.Fatal(err)
		}
		var raw []byte
		if err := cbor.Unmarshal(tag.Content, &raw); err != nil {
			t.Fatal(err)
		}

		// elementValue is always the last key so the value sits at the end.
		key := append([]byte{0x6c}, "elementValue"...)
		if idx := bytes.LastIndex(raw, key); idx < 0 || idx+len(key) >= len(raw) {
			t.Errorf("elementValue not last in %x", raw)
		}
	}
}

func TestSeal_ReadEncryptionInfo(t *testing.T) {
	sk, err := ecdh.P256().GenerateKey(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	pub := sk.PublicKey().Bytes()

	info, err := cbor.Marshal([]any{"dcapi", map[string]any{
		"nonce":              make([]byte, 12),
		"recipientPublicKey": map[int]any{1: 2, -1: 1, -2: pub[1:33], -3: pub[33:]},
	}})
	if err != nil {
		t.Fatal(err)
	}

	req, err := ReadEncryptionInfo(info)
	if err != nil {
		t.Fatalf("ReadEncryptionInfo() error = %v", err)
	}
	if !bytes.Equal(req.RecipientPublicKey, pub) {
		t.Errorf("recipient = %x, want %x", req.RecipientPublicKey, pub)
	}

	if _, err := Seal(req, []byte("hello"), SealOptions{Origin: "https://a.example"}); err != nil {
		t.Errorf("Seal() error = %v", err)
	}
}

func TestSeal_OpensWithRecipientKey(t *testing.T) {
	sk, err := ecdh.P256().GenerateKey(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	req := &Request{Nonce: bytes.Repeat([]byte{7}, 12), RecipientPublicKey: sk.PublicKey().Bytes()}

	sealed, err := Seal(req, []byte("hello"), SealOptions{Origin: "https://a.example"})
	if err != nil {
		t.Fatalf("Seal() error = %v", err)
	}

	var resp encryptedResponse
	if err := cbor.Unmarshal(sealed, &resp); err != nil {
		t.Fatal(err)
	}

	skR, err := hpke.KEM_P256_HKDF_SHA256.Scheme().UnmarshalBinaryPrivateKey(sk.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	receiver, err := suite.NewReceiver(skR, nil)
	if err != nil {
		t.Fatal(err)
	}
	opener, err := receiver.Setup(resp.Parameters.Enc)
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}

	origin, err := cbor.Marshal(map[string]string{"baseUrl": "https://a.example"})
	if err != nil {
		t.Fatal(err)
	}
	transcript, err := Transcript(req.Nonce, origin, resp.Parameters.Enc)
	if err != nil {
		t.Fatal(err)
	}
	pt, err := opener.Open(resp.Parameters.CipherText, transcript)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if string(pt) != "hello" {
		t.Errorf("plaintext = %q", pt)
	}
}

func TestReadEncryptionInfo_Rejects(t *testing.T) {
	other, _ := cbor.Marshal([]any{"openid4vp", map[string]any{}})
	badKey, _ := cbor.Marshal([]any{"dcapi", map[string]any{
		"nonce":              make([]byte, 12),
		"recipientPublicKey": map[int]any{1: 1, -1: 6},
	}})

	for name, data := range map[string][]byte{"other protocol": other, "okp key": badKey, "garbage": {0xff}} {
		if _, err := ReadEncryptionInfo(data); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

package witness

import (
	"encoding/json"
)

// byteArray renders bytes as a JSON array of integers, the form circuit
// input files use.
type byteArray []byte

func (b byteArray) MarshalJSON() ([]byte, error) {
	ints := make([]int, len(b))
	for i, v := range b {
		ints[i] = int(v)
	}
	return json.Marshal(ints)
}

type publicJSON struct {
	Nullifier          string    `json:"nullifier"`
	Binding            string    `json:"binding"`
	Date               uint64    `json:"date"`
	EventID            string    `json:"eventId"`
	IssuerRoot         string    `json:"issuerRoot"`
	BoundAddress       string    `json:"boundAddress"`
	RevealAgeOver18    bool      `json:"revealAgeOver18"`
	RevealAgeOver21    bool      `json:"revealAgeOver21"`
	RevealJurisdiction bool      `json:"revealJurisdiction"`
	JurisdictionCode   byteArray `json:"jurisdictionCode"`
}

// MarshalJSON emits field elements as 0x hex and flags as booleans.
func (p PublicOutputs) MarshalJSON() ([]byte, error) {
	return json.Marshal(publicJSON{
		Nullifier:          FieldHex(p.Nullifier),
		Binding:            FieldHex(p.Binding),
		Date:               p.Date,
		EventID:            FieldHex(p.EventID),
		IssuerRoot:         FieldHex(p.IssuerRoot),
		BoundAddress:       FieldHex(p.BoundAddress),
		RevealAgeOver18:    p.RevealAgeOver18,
		RevealAgeOver21:    p.RevealAgeOver21,
		RevealJurisdiction: p.RevealJurisdiction,
		JurisdictionCode:   p.JurisdictionCode[:],
	})
}

type witnessJSON struct {
	SignedDocument       byteArray     `json:"signedDocument"`
	SignedDocumentLength int           `json:"signedDocumentLength"`
	Signature            byteArray     `json:"signature"`
	AgeOver18            byteArray     `json:"ageOver18"`
	AgeOver18Length      int           `json:"ageOver18Length"`
	AgeOver21            byteArray     `json:"ageOver21"`
	AgeOver21Length      int           `json:"ageOver21Length"`
	Jurisdiction         byteArray     `json:"jurisdiction"`
	JurisdictionLength   int           `json:"jurisdictionLength"`
	DocumentNumber       byteArray     `json:"documentNumber"`
	IssuerX              byteArray     `json:"issuerX"`
	IssuerY              byteArray     `json:"issuerY"`
	Public               PublicOutputs `json:"public"`
}

// MarshalJSON emits the prover input document.
func (w *Witness) MarshalJSON() ([]byte, error) {
	return json.Marshal(witnessJSON{
		SignedDocument:       w.SignedDocument,
		SignedDocumentLength: w.SignedDocumentLength,
		Signature:            w.Signature,
		AgeOver18:            w.AgeOver18,
		AgeOver18Length:      w.AgeOver18Length,
		AgeOver21:            w.AgeOver21,
		AgeOver21Length:      w.AgeOver21Length,
		Jurisdiction:         w.Jurisdiction,
		JurisdictionLength:   w.JurisdictionLength,
		DocumentNumber:       w.DocumentNumber,
		IssuerX:              w.IssuerX,
		IssuerY:              w.IssuerY,
		Public:               w.Public,
	})
}

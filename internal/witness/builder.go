package witness

import (
	"fmt"
	"time"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/mdlproof/client-go/internal/mdoc"
)

// Buffer widths fixed by the circuit.
const (
	SignedDocumentWidth    = 512
	SignatureWidth         = 64
	AgeClaimWidth          = 96
	JurisdictionClaimWidth = 107
	DocumentNumberWidth    = 32
	CoordinateWidth        = 32

	// JurisdictionValueOffset is where the two-letter code sits inside the
	// jurisdiction item buffer.
	JurisdictionValueOffset = 105
	JurisdictionValueSize   = 2
)

// Claim identifiers read by the circuit.
const (
	ClaimAgeOver18    = "age_over_18"
	ClaimAgeOver21    = "age_over_21"
	ClaimJurisdiction = "issuing_jurisdiction"
)

// RevealFlags selects which statements the proof discloses.
type RevealFlags struct {
	AgeOver18    bool
	AgeOver21    bool
	Jurisdiction bool
}

// Elements returns the claim identifiers the flags require.
func (r RevealFlags) Elements() []string {
	var out []string
	if r.AgeOver18 {
		out = append(out, ClaimAgeOver18)
	}
	if r.AgeOver21 {
		out = append(out, ClaimAgeOver21)
	}
	if r.Jurisdiction {
		out = append(out, ClaimJurisdiction)
	}
	return out
}

// Request carries the caller-chosen inputs of one proof.
type Request struct {
	// EventID scopes the nullifier to one application event.
	EventID string
	// BoundAddress is the 0x-prefixed address the proof is bound to.
	BoundAddress string
	Reveal       RevealFlags
	// Date is the proof date; zero means today.
	Date     time.Time
	Oversize OversizePolicy
}

// PublicOutputs are the circuit's public signals, in circuit order.
type PublicOutputs struct {
	Nullifier          fr.Element
	Binding            fr.Element
	Date               uint64
	EventID            fr.Element
	IssuerRoot         fr.Element
	BoundAddress       fr.Element
	RevealAgeOver18    bool
	RevealAgeOver21    bool
	RevealJurisdiction bool
	JurisdictionCode   [JurisdictionValueSize]byte
}

// Fields returns the public outputs as field elements in circuit order.
func (p *PublicOutputs) Fields() []fr.Element {
	out := make([]fr.Element, 0, 11)
	out = append(out, p.Nullifier, p.Binding)

	var date fr.Element
	date.SetUint64(p.Date)
	out = append(out, date, p.EventID, p.IssuerRoot, p.BoundAddress)

	for _, flag := range []bool{p.RevealAgeOver18, p.RevealAgeOver21, p.RevealJurisdiction} {
		var e fr.Element
		if flag {
			e.SetOne()
		}
		out = append(out, e)
	}

	for _, b := range p.JurisdictionCode {
		var e fr.Element
		e.SetUint64(uint64(b))
		out = append(out, e)
	}
	return out
}

// Witness is the complete prover input for one credential.
type Witness struct {
	SignedDocument       []byte
	SignedDocumentLength int
	Signature            []byte

	AgeOver18          []byte
	AgeOver18Length    int
	AgeOver21          []byte
	AgeOver21Length    int
	Jurisdiction       []byte
	JurisdictionLength int

	// DocumentNumber is private to the prover.
	DocumentNumber []byte
	IssuerX        []byte
	IssuerY        []byte

	Public PublicOutputs

	// Truncated names the buffers cut under TruncateOversized.
	Truncated []string
}

// Build assembles the witness for cred. It fails rather than returning a
// partially filled witness.
func Build(cred *mdoc.Credential, req Request) (*Witness, error) {
	if len(cred.Signature) != SignatureWidth {
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidSignature, len(cred.Signature))
	}

	eventID, err := EventIDField(req.EventID)
	if err != nil {
		return nil, err
	}
	address, err := AddressField(req.BoundAddress)
	if err != nil {
		return nil, err
	}

	w := &Witness{Signature: append([]byte(nil), cred.Signature...)}

	var truncated bool
	w.SignedDocument, truncated, err = req.Oversize.fit("signed document", cred.SignedDocument, SignedDocumentWidth)
	if err != nil {
		return nil, err
	}
	w.SignedDocumentLength = min(len(cred.SignedDocument), SignedDocumentWidth)
	if truncated {
		w.Truncated = append(w.Truncated, "signed document")
	}

	claims := []struct {
		id     string
		width  int
		reveal bool
		buf    *[]byte
		length *int
	}{
		{ClaimAgeOver18, AgeClaimWidth, req.Reveal.AgeOver18, &w.AgeOver18, &w.AgeOver18Length},
		{ClaimAgeOver21, AgeClaimWidth, req.Reveal.AgeOver21, &w.AgeOver21, &w.AgeOver21Length},
		{ClaimJurisdiction, JurisdictionClaimWidth, req.Reveal.Jurisdiction, &w.Jurisdiction, &w.JurisdictionLength},
	}
	for _, c := range claims {
		claim, ok := cred.Claims[c.id]
		if !ok {
			if c.reveal {
				return nil, fmt.Errorf("%w: %s", mdoc.ErrMissingClaim, c.id)
			}
			*c.buf = make([]byte, c.width)
			continue
		}

		buf, cut, err := req.Oversize.fit(c.id, claim.Raw, c.width)
		if err != nil {
			return nil, err
		}
		*c.buf = buf
		*c.length = min(len(claim.Raw), c.width)
		if cut {
			w.Truncated = append(w.Truncated, c.id)
		}
	}

	if err := checkReveals(cred, req.Reveal, w.Jurisdiction); err != nil {
		return nil, err
	}

	if w.DocumentNumber, err = PadLeft(cred.DocumentNumber, DocumentNumberWidth); err != nil {
		return nil, fmt.Errorf("document number: %w", err)
	}
	if w.IssuerX, err = PadLeft(cred.IssuerKey.X, CoordinateWidth); err != nil {
		return nil, fmt.Errorf("issuer key: %w", err)
	}
	if w.IssuerY, err = PadLeft(cred.IssuerKey.Y, CoordinateWidth); err != nil {
		return nil, fmt.Errorf("issuer key: %w", err)
	}

	root, err := IssuerRoot(w.IssuerX, w.IssuerY)
	if err != nil {
		return nil, err
	}
	nullifier := Nullifier(FieldFromBytes(w.DocumentNumber), eventID, root)

	date := req.Date
	if date.IsZero() {
		date = time.Now()
	}

	w.Public = PublicOutputs{
		Nullifier:          nullifier,
		Binding:            Binding(nullifier, address),
		Date:               ProofDate(date),
		EventID:            eventID,
		IssuerRoot:         root,
		BoundAddress:       address,
		RevealAgeOver18:    req.Reveal.AgeOver18,
		RevealAgeOver21:    req.Reveal.AgeOver21,
		RevealJurisdiction: req.Reveal.Jurisdiction,
	}
	if req.Reveal.Jurisdiction {
		copy(w.Public.JurisdictionCode[:], w.Jurisdiction[JurisdictionValueOffset:])
	}

	return w, nil
}

// checkReveals refuses to build a proof whose disclosed statements would
// not hold inside the circuit.
func checkReveals(cred *mdoc.Credential, reveal RevealFlags, jurisdiction []byte) error {
	for _, age := range []struct {
		id     string
		reveal bool
	}{
		{ClaimAgeOver18, reveal.AgeOver18},
		{ClaimAgeOver21, reveal.AgeOver21},
	} {
		if !age.reveal {
			continue
		}
		if v, ok := cred.Claims[age.id].Bool(); !ok || !v {
			return fmt.Errorf("%w: %s", ErrClaimNotSatisfied, age.id)
		}
	}

	if reveal.Jurisdiction {
		code, ok := cred.Claims[ClaimJurisdiction].Text()
		at := string(jurisdiction[JurisdictionValueOffset : JurisdictionValueOffset+JurisdictionValueSize])
		if !ok || len(code) != JurisdictionValueSize || code != at {
			return fmt.Errorf("%w: %s value is not at offset %d", ErrClaimNotSatisfied, ClaimJurisdiction, JurisdictionValueOffset)
		}
	}
	return nil
}

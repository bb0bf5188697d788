package mdlproof

import (
	"bytes"
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mdlproof/client-go/internal/mdoc"
	"github.com/mdlproof/client-go/internal/witness"
)

// Credential is the parsed, read-only view of one issuer-signed document.
type Credential = mdoc.Credential

// Claim is one issuer-signed data element of a Credential.
type Claim = mdoc.Claim

// Witness is the complete prover input for one credential.
type Witness = witness.Witness

// PublicOutputs are the circuit's public signals, in circuit order.
type PublicOutputs = witness.PublicOutputs

// RevealFlags selects which statements a proof discloses.
type RevealFlags = witness.RevealFlags

// WitnessRequest carries the caller-chosen inputs of one proof.
type WitnessRequest struct {
	// EventID scopes the nullifier to one application event.
	EventID string
	// BoundAddress is the 0x-prefixed 20-byte address the proof is bound to.
	BoundAddress string
	Reveal       RevealFlags
	// Date is the proof date; zero means the verifier clock's today.
	Date time.Time
}

// Presentation is the result of a complete Verifier.Prove run.
type Presentation struct {
	Witness *Witness
	Proof   *Proof
}

// Elements returns the data elements to request for reveal. The document
// number is always included because it feeds the nullifier.
func Elements(reveal RevealFlags) []string {
	return append(reveal.Elements(), mdoc.ClaimDocumentNumber)
}

// Verifier runs the presentation pipeline: session setup, decryption,
// credential parsing and witness assembly. It is safe for concurrent use.
type Verifier struct {
	cfg *config
	log logrus.FieldLogger
}

// New creates a Verifier.
func New(opts ...Option) *Verifier {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return &Verifier{cfg: cfg, log: cfg.logger}
}

// NewSession starts a presentation attempt for origin.
func (v *Verifier) NewSession(origin string) (*Session, error) {
	s, err := newSession(origin, v.cfg)
	if err != nil {
		return nil, err
	}
	v.log.WithField("origin", origin).Debug("session created")
	return s, nil
}

// Open decrypts doc with session and parses the credential it carries.
// The session is consumed.
func (v *Verifier) Open(session *Session, doc *EncryptedDocument) (*Credential, error) {
	if session == nil {
		return nil, ErrSessionConsumed
	}
	log := v.log.WithField("origin", session.Origin())

	if doc != nil && len(doc.OriginInfo) > 0 {
		want, err := mdoc.OriginInfoBytes(session.Origin())
		if err == nil && !bytes.Equal(doc.OriginInfo, want) {
			log.Warn("echoed origin info does not match the session origin")
		}
	}

	plaintext, err := session.Open(doc)
	if err != nil {
		log.WithError(err).Debug("open failed")
		return nil, err
	}
	log.WithField("bytes", len(plaintext)).Debug("response decrypted")

	now := v.cfg.now()
	cred, err := mdoc.Parse(plaintext, mdoc.ParseOptions{
		DocType:         v.cfg.docType,
		Namespace:       v.cfg.namespace,
		Now:             now,
		KeyScanFallback: v.cfg.keyScanFallback,
	})
	if err != nil {
		err = wrapError("credential", err)
		var stale *StaleError
		if errors.As(err, &stale) {
			stale.Now = now
		}
		log.WithError(err).Debug("parse failed")
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"docType": cred.DocType,
		"claims":  len(cred.Claims),
	}).Debug("credential parsed")
	return cred, nil
}

// BuildWitness assembles the prover input for cred.
func (v *Verifier) BuildWitness(cred *Credential, req WitnessRequest) (*Witness, error) {
	if cred == nil {
		return nil, &ParseError{Stage: "witness", Err: mdoc.ErrNoDocuments}
	}

	if v.cfg.preflight {
		if err := v.preflight(cred, req.Reveal); err != nil {
			return nil, err
		}
	}

	date := req.Date
	if date.IsZero() {
		date = v.cfg.now()
	}

	w, err := witness.Build(cred, witness.Request{
		EventID:      req.EventID,
		BoundAddress: req.BoundAddress,
		Reveal:       req.Reveal,
		Date:         date,
		Oversize:     v.cfg.oversize,
	})
	if err != nil {
		return nil, wrapError("witness", err)
	}

	if len(w.Truncated) > 0 {
		v.log.WithField("buffers", w.Truncated).Warn("claims truncated to circuit width; proof may not verify")
	}
	v.log.WithField("date", w.Public.Date).Debug("witness assembled")
	return w, nil
}

func (v *Verifier) preflight(cred *Credential, reveal RevealFlags) error {
	if err := cred.VerifySignature(); err != nil {
		return wrapError("signature", err)
	}
	for _, id := range Elements(reveal) {
		if err := cred.VerifyDigest(id); err != nil {
			return wrapError("digest", err)
		}
	}
	return nil
}

// Prove runs the whole pipeline for doc and hands the witness to the
// configured Prover.
func (v *Verifier) Prove(ctx context.Context, session *Session, doc *EncryptedDocument, req WitnessRequest) (*Presentation, error) {
	if v.cfg.prover == nil {
		if session != nil {
			session.Discard()
		}
		return nil, ErrNoProver
	}

	cred, err := v.Open(session, doc)
	if err != nil {
		return nil, err
	}

	w, err := v.BuildWitness(cred, req)
	if err != nil {
		return nil, err
	}

	proof, err := v.cfg.prover.Prove(ctx, w)
	if err != nil {
		return nil, wrapError("prove", err)
	}
	v.log.WithField("requestId", proof.RequestID).Debug("proof received")

	return &Presentation{Witness: w, Proof: proof}, nil
}

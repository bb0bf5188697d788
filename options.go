package mdlproof

import (
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mdlproof/client-go/internal/mdoc"
	"github.com/mdlproof/client-go/internal/witness"
)

const (
	// DefaultDocType is the ISO 18013-5 mDL document type.
	DefaultDocType = mdoc.DefaultDocType
	// DefaultNamespace is the ISO 18013-5 mDL namespace.
	DefaultNamespace = mdoc.DefaultNamespace
)

// OversizePolicy decides what happens when a claim exceeds its circuit buffer.
type OversizePolicy = witness.OversizePolicy

const (
	// RejectOversized fails witness assembly on an oversized claim.
	RejectOversized = witness.RejectOversized
	// TruncateOversized cuts the claim to width and logs a warning.
	TruncateOversized = witness.TruncateOversized
)

// config holds configuration for a Verifier.
type config struct {
	logger          logrus.FieldLogger
	now             func() time.Time
	info            []byte
	docType         string
	namespace       string
	oversize        OversizePolicy
	keyScanFallback bool
	preflight       bool
	prover          Prover
}

func defaultConfig() *config {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	return &config{
		logger:    discard,
		now:       time.Now,
		docType:   DefaultDocType,
		namespace: DefaultNamespace,
		oversize:  RejectOversized,
	}
}

// Option configures a Verifier.
type Option func(*config)

// WithLogger sets the logger. By default nothing is logged.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithClock sets the time source used for validity checks and proof dates.
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		if now != nil {
			c.now = now
		}
	}
}

// WithHPKEInfo sets the HPKE info string the wallet seals with.
// Default: empty
func WithHPKEInfo(info []byte) Option {
	return func(c *config) {
		c.info = append([]byte(nil), info...)
	}
}

// WithDocType sets the document type requested and parsed.
// Default: org.iso.18013.5.1.mDL
func WithDocType(docType string) Option {
	return func(c *config) {
		c.docType = docType
	}
}

// WithNamespace sets the namespace claims are read from.
// Default: org.iso.18013.5.1
func WithNamespace(namespace string) Option {
	return func(c *config) {
		c.namespace = namespace
	}
}

// WithOversizePolicy sets how oversized claims are handled.
// Default: RejectOversized
func WithOversizePolicy(policy OversizePolicy) Option {
	return func(c *config) {
		c.oversize = policy
	}
}

// WithKeyScanFallback enables the byte-pattern issuer key scan for
// certificates the DER walk cannot read.
func WithKeyScanFallback(enabled bool) Option {
	return func(c *config) {
		c.keyScanFallback = enabled
	}
}

// WithPreflightChecks verifies the issuer signature and the digests of the
// claims feeding the witness before assembly.
// Default: false
func WithPreflightChecks(enabled bool) Option {
	return func(c *config) {
		c.preflight = enabled
	}
}

// WithProver sets the proving backend used by Verifier.Prove.
func WithProver(p Prover) Option {
	return func(c *config) {
		c.prover = p
	}
}

package mdlproof

import (
	"errors"
	"fmt"
	"time"

	"github.com/mdlproof/client-go/internal/crypto"
	"github.com/mdlproof/client-go/internal/mdoc"
	"github.com/mdlproof/client-go/internal/prover"
	"github.com/mdlproof/client-go/internal/witness"
)

// Sentinel errors for errors.Is() checks. Each of the first six names one
// Kind of the taxonomy.
var (
	// ErrUnsupported is returned when the response uses a protocol this
	// verifier cannot run.
	ErrUnsupported = errors.New("unsupported protocol")

	// ErrUserDeclined is returned when the holder cancelled the presentation.
	ErrUserDeclined = errors.New("user declined")

	// ErrNoData is returned when the wallet returned nothing to decrypt.
	ErrNoData = errors.New("no data returned")

	// ErrDecryptionFailed is returned when the response cannot be opened.
	// Tampering, a wrong key and a transcript mismatch are indistinguishable.
	ErrDecryptionFailed = errors.New("decryption failed")

	// ErrParseFailed is returned when the decrypted credential is unusable.
	ErrParseFailed = errors.New("credential parse failed")

	// ErrStale is returned when the credential is outside its validity window.
	ErrStale = errors.New("credential is stale")

	// ErrSessionConsumed is returned when a session is opened twice,
	// after Discard, or when no session is given.
	ErrSessionConsumed = errors.New("session already consumed")

	// ErrNoProver is returned by Verifier.Prove when no Prover is configured.
	ErrNoProver = errors.New("no prover configured")

	// ErrUnauthorized is returned when the proving service rejects the API key.
	ErrUnauthorized = prover.ErrUnauthorized

	// ErrRateLimited is returned when the proving service rate limit is exceeded.
	ErrRateLimited = prover.ErrRateLimited
)

// Kind classifies a failure for callers that need to react to it, for
// example to ask the holder to present again.
type Kind int

const (
	// KindUnknown is any failure outside the taxonomy, including transport
	// errors from a Prover.
	KindUnknown Kind = iota
	KindUnsupported
	KindUserDeclined
	KindNoData
	KindDecryptionFailed
	KindParseFailed
	KindStale
)

func (k Kind) String() string {
	switch k {
	case KindUnsupported:
		return "unsupported"
	case KindUserDeclined:
		return "user_declined"
	case KindNoData:
		return "no_data"
	case KindDecryptionFailed:
		return "decryption_failed"
	case KindParseFailed:
		return "parse_failed"
	case KindStale:
		return "stale"
	}
	return "unknown"
}

var kindSentinels = []struct {
	kind Kind
	err  error
}{
	{KindUnsupported, ErrUnsupported},
	{KindUserDeclined, ErrUserDeclined},
	{KindNoData, ErrNoData},
	{KindDecryptionFailed, ErrDecryptionFailed},
	{KindStale, ErrStale},
	{KindParseFailed, ErrParseFailed},
}

// KindOf reports the taxonomy kind of err.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	for _, s := range kindSentinels {
		if errors.Is(err, s.err) {
			return s.kind
		}
	}
	return KindUnknown
}

// VerifierError is implemented by all errors returned from this package.
type VerifierError interface {
	error
	VerifierError() // marker method
}

// APIError is an HTTP error from the proving service.
type APIError = prover.APIError

// NetworkError is a transport failure talking to the proving service.
type NetworkError = prover.NetworkError

// Error is a plain taxonomy error with no extra detail.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return e.Kind.String()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for sentinel error matching.
func (e *Error) Is(target error) bool {
	for _, s := range kindSentinels {
		if s.kind == e.Kind {
			return target == s.err
		}
	}
	return false
}

// VerifierError implements the VerifierError interface.
func (e *Error) VerifierError() {}

// Declined returns the error a transport layer reports when the holder
// cancels before any response exists.
func Declined(reason string) error {
	if reason == "" {
		return &Error{Kind: KindUserDeclined}
	}
	return &Error{Kind: KindUserDeclined, Err: errors.New(reason)}
}

// DecryptionError represents a failure to open the encrypted response.
type DecryptionError struct {
	Stage string // "kem", "aead"
	Err   error
}

func (e *DecryptionError) Error() string {
	return fmt.Sprintf("decryption failed at %s: %v", e.Stage, e.Err)
}

// Unwrap returns the underlying error.
func (e *DecryptionError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for sentinel error matching.
func (e *DecryptionError) Is(target error) bool {
	return target == ErrDecryptionFailed
}

// VerifierError implements the VerifierError interface.
func (e *DecryptionError) VerifierError() {}

// ParseError represents a decrypted credential that cannot be used.
type ParseError struct {
	Stage string // "envelope", "credential", "witness"
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse failed at %s: %v", e.Stage, e.Err)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for sentinel error matching.
func (e *ParseError) Is(target error) bool {
	return target == ErrParseFailed
}

// VerifierError implements the VerifierError interface.
func (e *ParseError) VerifierError() {}

// StaleError reports a credential outside its validity window.
type StaleError struct {
	// Now is the reference time the window was checked against.
	Now time.Time
	Err error
}

func (e *StaleError) Error() string {
	if e.Now.IsZero() {
		return fmt.Sprintf("stale credential: %v", e.Err)
	}
	return fmt.Sprintf("stale credential at %s: %v", e.Now.Format(time.RFC3339), e.Err)
}

// Unwrap returns the underlying error.
func (e *StaleError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for sentinel error matching.
func (e *StaleError) Is(target error) bool {
	return target == ErrStale
}

// VerifierError implements the VerifierError interface.
func (e *StaleError) VerifierError() {}

// wrapError converts internal errors to public ones so that errors.Is()
// checks work with the public sentinels. stage names the pipeline step.
func wrapError(stage string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(VerifierError); ok {
		return err
	}

	switch {
	case errors.Is(err, mdoc.ErrUnsupportedProtocol):
		return &Error{Kind: KindUnsupported, Err: err}
	case errors.Is(err, mdoc.ErrNoData), errors.Is(err, mdoc.ErrNoDocuments):
		return &Error{Kind: KindNoData, Err: err}
	case errors.Is(err, crypto.ErrDecryptionFailed),
		errors.Is(err, crypto.ErrInvalidEncapsulatedKey),
		errors.Is(err, crypto.ErrDecapsulationFailed),
		errors.Is(err, crypto.ErrMessageLimitReached):
		return &DecryptionError{Stage: decryptionStage(err), Err: err}
	case errors.Is(err, mdoc.ErrExpired), errors.Is(err, mdoc.ErrNotYetValid):
		return &StaleError{Err: err}
	}

	var apiErr *prover.APIError
	var netErr *prover.NetworkError
	if errors.As(err, &apiErr) || errors.As(err, &netErr) {
		return err
	}

	if isParseFailure(err) {
		return &ParseError{Stage: stage, Err: err}
	}
	return err
}

func decryptionStage(err error) string {
	if errors.Is(err, crypto.ErrInvalidEncapsulatedKey) || errors.Is(err, crypto.ErrDecapsulationFailed) {
		return "kem"
	}
	return "aead"
}

var parseFailures = []error{
	mdoc.ErrMalformedResponse,
	mdoc.ErrDocTypeNotFound,
	mdoc.ErrNamespaceNotFound,
	mdoc.ErrMissingClaim,
	mdoc.ErrDuplicateClaim,
	mdoc.ErrMalformedItem,
	mdoc.ErrMalformedIssuerAuth,
	mdoc.ErrMalformedMSO,
	mdoc.ErrDocTypeMismatch,
	mdoc.ErrMissingCertificate,
	mdoc.ErrPublicKeyNotFound,
	mdoc.ErrUnsupportedDigest,
	mdoc.ErrDigestMismatch,
	mdoc.ErrInvalidSignature,
	witness.ErrClaimTooLarge,
	witness.ErrFieldTooLarge,
	witness.ErrClaimNotSatisfied,
	witness.ErrInvalidSignature,
}

func isParseFailure(err error) bool {
	for _, target := range parseFailures {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

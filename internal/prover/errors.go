package prover

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized indicates the API key was rejected (401/403).
	ErrUnauthorized = errors.New("prover rejected credentials")
	// ErrInvalidWitness indicates the service refused the witness (400/422).
	ErrInvalidWitness = errors.New("prover rejected witness")
	// ErrRateLimited indicates the rate limit has been exceeded (429).
	ErrRateLimited = errors.New("prover rate limit exceeded")
	// ErrUnavailable indicates the service could not take the job (503).
	ErrUnavailable = errors.New("prover unavailable")
)

// APIError represents an HTTP error from the proving service.
type APIError struct {
	StatusCode int
	Message    string
	RequestID  string
}

func (e *APIError) Error() string {
	if e.RequestID != "" {
		if e.Message != "" {
			return fmt.Sprintf("prover error %d: %s (request_id: %s)", e.StatusCode, e.Message, e.RequestID)
		}
		return fmt.Sprintf("prover error %d (request_id: %s)", e.StatusCode, e.RequestID)
	}
	if e.Message != "" {
		return fmt.Sprintf("prover error %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("prover error %d", e.StatusCode)
}

// VerifierError implements the root package's error marker interface.
func (e *APIError) VerifierError() {}

// Is implements errors.Is for sentinel error matching.
func (e *APIError) Is(target error) bool {
	switch e.StatusCode {
	case 401, 403:
		return target == ErrUnauthorized
	case 400, 422:
		return target == ErrInvalidWitness
	case 429:
		return target == ErrRateLimited
	case 503:
		return target == ErrUnavailable
	}
	return false
}

// NetworkError represents a transport-level failure after all retries.
type NetworkError struct {
	Err     error
	URL     string
	Attempt int
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error after %d attempt(s): %v", e.Attempt, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// VerifierError implements the root package's error marker interface.
func (e *NetworkError) VerifierError() {}

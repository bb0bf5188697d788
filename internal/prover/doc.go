// Package prover is an HTTP client for a remote proving service. It posts a
// witness document as JSON, receives the proof and its public signals, and
// retries transient failures with exponential backoff.
//
// # Retry Behavior
//
// Requests are retried up to [DefaultMaxRetries] times on network errors and
// on these status codes:
//
//   - 408 Request Timeout
//   - 429 Too Many Requests
//   - 500, 502, 503 and 504
//
// A Retry-After header on 429 or 503 overrides the computed delay, capped
// at [RetryConfig.MaxDelay].
//
// # Error Handling
//
// HTTP failures surface as [*APIError], which matches the sentinels
// [ErrUnauthorized], [ErrInvalidWitness], [ErrRateLimited] and
// [ErrUnavailable] through errors.Is. Transport failures surface as
// [*NetworkError].
//
// The [Client] type is safe for concurrent use.
package prover

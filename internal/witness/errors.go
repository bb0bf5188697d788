package witness

import "errors"

var (
	// ErrClaimTooLarge is returned when a claim or the signed document
	// exceeds its buffer and oversized input is rejected.
	ErrClaimTooLarge = errors.New("claim exceeds circuit width")

	// ErrFieldTooLarge is returned when a right-aligned value exceeds its width.
	ErrFieldTooLarge = errors.New("value exceeds field width")

	// ErrInvalidAddress is returned for anything but a 0x-prefixed 20-byte hex address.
	ErrInvalidAddress = errors.New("invalid bound address")

	// ErrEmptyEventID is returned when no event identifier is supplied.
	ErrEmptyEventID = errors.New("event identifier is required")

	// ErrClaimNotSatisfied is returned when a revealed claim does not hold,
	// for example age_over_21 issued as false.
	ErrClaimNotSatisfied = errors.New("revealed claim not satisfied")

	// ErrInvalidSignature is returned when the signature is not 64 bytes.
	ErrInvalidSignature = errors.New("invalid signature length")
)

package witness

import "fmt"

// PadRight copies src into a buffer of exactly width bytes, zero-filling the
// tail. Longer input is cut at width and reported as truncated.
func PadRight(src []byte, width int) ([]byte, bool) {
	out := make([]byte, width)
	n := copy(out, src)
	return out, n < len(src)
}

// PadLeft right-aligns src in a zero-filled buffer of width bytes.
func PadLeft(src []byte, width int) ([]byte, error) {
	if len(src) > width {
		return nil, fmt.Errorf("%w: %d bytes into %d", ErrFieldTooLarge, len(src), width)
	}
	out := make([]byte, width)
	copy(out[width-len(src):], src)
	return out, nil
}

// OversizePolicy decides what happens to input longer than its buffer.
type OversizePolicy int

const (
	// RejectOversized fails with ErrClaimTooLarge.
	RejectOversized OversizePolicy = iota
	// TruncateOversized cuts the input at the buffer width. The dropped
	// bytes are not covered by the proof.
	TruncateOversized
)

func (p OversizePolicy) String() string {
	switch p {
	case RejectOversized:
		return "reject"
	case TruncateOversized:
		return "truncate"
	default:
		return fmt.Sprintf("OversizePolicy(%d)", int(p))
	}
}

// fit pads src to width under the policy. truncated is true only when the
// policy allowed a cut.
func (p OversizePolicy) fit(name string, src []byte, width int) (buf []byte, truncated bool, err error) {
	if len(src) > width && p != TruncateOversized {
		return nil, false, fmt.Errorf("%w: %s is %d bytes, limit %d", ErrClaimTooLarge, name, len(src), width)
	}
	buf, truncated = PadRight(src, width)
	return buf, truncated, nil
}

package witness

import (
	"bytes"
	"errors"
	"testing"
)

func TestPadRight(t *testing.T) {
	tests := []struct {
		name      string
		src       []byte
		width     int
		want      []byte
		truncated bool
	}{
		{"exact", []byte{1, 2, 3}, 3, []byte{1, 2, 3}, false},
		{"short", []byte{1, 2}, 4, []byte{1, 2, 0, 0}, false},
		{"empty", nil, 3, []byte{0, 0, 0}, false},
		{"long", []byte{1, 2, 3, 4}, 2, []byte{1, 2}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, truncated := PadRight(tt.src, tt.width)
			if !bytes.Equal(got, tt.want) {
				t.Errorf("PadRight() = %v, want %v", got, tt.want)
			}
			if truncated != tt.truncated {
				t.Errorf("truncated = %v, want %v", truncated, tt.truncated)
			}
		})
	}
}

func TestPadRight_Idempotent(t *testing.T) {
	for _, width := range []int{SignatureWidth, AgeClaimWidth, JurisdictionClaimWidth, SignedDocumentWidth} {
		src := bytes.Repeat([]byte{0xab}, width/2)

		once, _ := PadRight(src, width)
		twice, truncated := PadRight(once, width)

		if truncated {
			t.Errorf("width %d: re-padding reported truncation", width)
		}
		if !bytes.Equal(once, twice) {
			t.Errorf("width %d: padding is not idempotent", width)
		}
		if !bytes.Equal(once[:len(src)], src) || !bytes.Equal(once[len(src):], make([]byte, width-len(src))) {
			t.Errorf("width %d: zeros were not appended only at the end", width)
		}
	}
}

func TestPadRight_DoesNotAlias(t *testing.T) {
	src := []byte{1, 2, 3}
	out, _ := PadRight(src, 3)
	out[0] = 9
	if src[0] != 1 {
		t.Error("PadRight() returned a buffer aliasing its input")
	}
}

func TestPadLeft(t *testing.T) {
	got, err := PadLeft([]byte("D1234567"), DocumentNumberWidth)
	if err != nil {
		t.Fatal(err)
	}
	want := append(make([]byte, 24), "D1234567"...)
	if !bytes.Equal(got, want) {
		t.Errorf("PadLeft() = %x, want %x", got, want)
	}

	again, err := PadLeft(got, DocumentNumberWidth)
	if err != nil || !bytes.Equal(again, got) {
		t.Error("PadLeft() is not idempotent on full-width input")
	}

	if _, err := PadLeft(make([]byte, 33), DocumentNumberWidth); !errors.Is(err, ErrFieldTooLarge) {
		t.Errorf("expected ErrFieldTooLarge, got %v", err)
	}
}

func TestOversizePolicy_Fit(t *testing.T) {
	long := make([]byte, AgeClaimWidth+1)

	if _, _, err := RejectOversized.fit("age_over_18", long, AgeClaimWidth); !errors.Is(err, ErrClaimTooLarge) {
		t.Errorf("reject: expected ErrClaimTooLarge, got %v", err)
	}

	buf, truncated, err := TruncateOversized.fit("age_over_18", long, AgeClaimWidth)
	if err != nil {
		t.Fatalf("truncate: error = %v", err)
	}
	if !truncated || len(buf) != AgeClaimWidth {
		t.Errorf("truncate: truncated = %v, len = %d", truncated, len(buf))
	}

	if got := TruncateOversized.String(); got != "truncate" {
		t.Errorf("String() = %q", got)
	}
}

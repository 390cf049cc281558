package transcode

import (
	"fmt"
	"strings"
)

// Validate checks that converted (UTF-8) carries exactly the text of
// original under originalEncoding. A single leading BOM is ignored on
// both sides. Texts that differ yield an error wrapping ErrContentMismatch.
func Validate(original, converted []byte, originalEncoding string) error {
	want, err := Decode(original, originalEncoding)
	if err != nil {
		return fmt.Errorf("failed to decode original: %w", err)
	}

	got, err := Decode(converted, "utf-8")
	if err != nil {
		return fmt.Errorf("failed to decode converted: %w", err)
	}

	want = strings.TrimPrefix(want, byteOrderMark)
	got = strings.TrimPrefix(got, byteOrderMark)

	if want != got {
		return fmt.Errorf("%w: converted text differs from original at byte %d",
			ErrContentMismatch, firstDifference(want, got))
	}

	return nil
}

func firstDifference(a, b string) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}

package transcode

import (
	"errors"
)

var (
	// ErrUnsupportedEncoding is returned for labels without a registered codec
	ErrUnsupportedEncoding = errors.New("unsupported encoding")

	// ErrDecode is returned when bytes are malformed for the stated encoding
	ErrDecode = errors.New("decode failed")

	// ErrContentMismatch is returned by Validate when the texts differ
	ErrContentMismatch = errors.New("content mismatch")
)

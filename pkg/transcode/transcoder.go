package transcode

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/transform"
)

const byteOrderMark = "\uFEFF"

var replacementChar = []byte(string(utf8.RuneError))

// Result holds the UTF-8 form of a buffer
type Result struct {
	// Output is the UTF-8 encoded text. When Reused is set it is the
	// caller's input slice, not a copy.
	Output []byte

	// Reused reports that the source was already UTF-8 and no
	// re-encoding happened
	Reused bool
}

// ToUTF8 converts data from sourceEncoding to UTF-8.
//
// UTF-8 input is returned untouched with Reused set. Anything else is
// decoded strictly and re-encoded; errors wrap ErrUnsupportedEncoding or
// ErrDecode.
func ToUTF8(data []byte, sourceEncoding string) (*Result, error) {
	if IsUTF8(sourceEncoding) {
		return &Result{Output: data, Reused: true}, nil
	}

	text, err := Decode(data, sourceEncoding)
	if err != nil {
		return nil, err
	}

	// Go strings are UTF-8, and the decoder only emits valid runes
	return &Result{Output: []byte(text)}, nil
}

// Decode decodes data under label into text.
//
// Decoders substitute U+FFFD for malformed input. Any substitution that
// does not correspond to an encoded U+FFFD in the source is reported as a
// decode failure rather than accepted.
func Decode(data []byte, label string) (string, error) {
	enc, err := Lookup(label)
	if err != nil {
		return "", err
	}

	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecode, err)
	}

	if bytes.Contains(out, replacementChar) {
		var literal []byte
		if encoded, err := enc.NewEncoder().Bytes(replacementChar); err == nil {
			literal = encoded
		}
		if count, first := scanInvalid(enc.NewDecoder(), data, literal); count > 0 {
			return "", fmt.Errorf("%w: %d invalid byte sequence(s) for %s, first at offset %d",
				ErrDecode, count, label, first)
		}
	}

	text := string(out)
	if isUTF16(label) {
		text = strings.TrimPrefix(text, byteOrderMark)
	}

	return text, nil
}

// Encode encodes text under label
func Encode(text string, label string) ([]byte, error) {
	enc, err := Lookup(label)
	if err != nil {
		return nil, err
	}

	out, err := enc.NewEncoder().Bytes([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("failed to encode as %s: %w", label, err)
	}

	return out, nil
}

// scanInvalid decodes data one character at a time and counts the
// sequences the decoder replaced with U+FFFD, skipping encoded U+FFFD
// characters. first is the source offset of the first one, or -1.
func scanInvalid(dec transform.Transformer, data, literal []byte) (count, first int) {
	var dst [64]byte
	first = -1

	pos := 0
	for pos < len(data) {
		n := 1
		for {
			end := pos + n
			atEOF := end >= len(data)
			if atEOF {
				end = len(data)
			}

			nDst, nSrc, err := dec.Transform(dst[:], data[pos:end], atEOF)
			if nSrc == 0 {
				if errors.Is(err, transform.ErrShortSrc) && !atEOF {
					n++
					continue
				}
				// No progress at EOF: the remainder is undecodable
				nSrc = len(data) - pos
				nDst = copy(dst[:], replacementChar)
			}

			if bytes.Contains(dst[:nDst], replacementChar) && !bytes.Equal(data[pos:pos+nSrc], literal) {
				if first < 0 {
					first = pos
				}
				count++
			}
			pos += nSrc
			break
		}
	}

	return count, first
}

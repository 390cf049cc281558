package detect

import (
	"github.com/saintfish/chardet"

	"github.com/sdejongh/utfnorris/pkg/transcode"
)

// DefaultMinConfidence is the lowest chardet score (1-100) taken as a
// guess. Pure ASCII scores 10 for UTF-8.
const DefaultMinConfidence = 10

// maxTrailingTrim bounds how many bytes are dropped from the end of a
// sample that was cut in the middle of a multi-byte character
const maxTrailingTrim = 3

// cjkCharsets are the multi-byte labels chardet scores together.
// Short samples often score all of them the same.
var cjkCharsets = map[string]bool{
	"gb18030":   true,
	"shift_jis": true,
	"euc-jp":    true,
	"euc-kr":    true,
	"big5":      true,
}

// Guesser is a statistical charset detector. It returns a single best
// guess, or false when the sample carries no usable signal.
type Guesser interface {
	Guess(sample []byte) (label string, ok bool)
}

// GuesserFunc adapts a function to the Guesser interface
type GuesserFunc func(sample []byte) (string, bool)

// Guess calls f(sample)
func (f GuesserFunc) Guess(sample []byte) (string, bool) {
	return f(sample)
}

// ChardetGuesser guesses with the ICU-derived recognizers of saintfish/chardet
type ChardetGuesser struct {
	detector      *chardet.Detector
	minConfidence int
}

// NewChardetGuesser creates a guesser for plain text (no markup stripping)
func NewChardetGuesser() *ChardetGuesser {
	return &ChardetGuesser{
		detector:      chardet.NewTextDetector(),
		minConfidence: DefaultMinConfidence,
	}
}

// SetMinConfidence changes the lowest accepted chardet score
func (g *ChardetGuesser) SetMinConfidence(score int) {
	g.minConfidence = score
}

// Guess returns the normalized label of the best candidate.
//
// Candidates are taken in chardet's order, except that GB18030 moves to
// the front when it ties with other CJK charsets. The first supported
// candidate that decodes the sample cleanly wins; when none does, the top
// candidate is returned as is. Samples that look binary, or whose best
// score is under the minimum, give no guess.
func (g *ChardetGuesser) Guess(sample []byte) (string, bool) {
	if len(sample) == 0 {
		return "", false
	}
	if _, hasBOM := DetectBOM(sample); !hasBOM && looksBinary(sample) {
		return "", false
	}

	results, err := g.detector.DetectAll(sample)
	if err != nil || len(results) == 0 || results[0].Confidence < g.minConfidence {
		return "", false
	}
	preferGB18030(results)

	for _, r := range results {
		if r.Confidence < g.minConfidence {
			break
		}
		label := NormalizeLabel(r.Charset)
		if IsSupported(label) && decodesCleanly(sample, label) {
			return label, true
		}
	}

	top := NormalizeLabel(results[0].Charset)
	if top == "" {
		return "", false
	}
	return top, true
}

// preferGB18030 moves GB18030 to the front of the top-scoring tier when
// that tier holds more than one CJK charset
func preferGB18030(results []chardet.Result) {
	tier, cjk, gb := 0, 0, -1
	for tier < len(results) && results[tier].Confidence == results[0].Confidence {
		label := NormalizeLabel(results[tier].Charset)
		if cjkCharsets[label] {
			cjk++
		}
		if label == "gb18030" {
			gb = tier
		}
		tier++
	}
	if cjk < 2 || gb <= 0 {
		return
	}

	winner := results[gb]
	copy(results[1:gb+1], results[:gb])
	results[0] = winner
}

// decodesCleanly reports whether sample decodes under label, allowing for
// a character split at the end of the sample
func decodesCleanly(sample []byte, label string) bool {
	for trim := 0; trim <= maxTrailingTrim && trim < len(sample); trim++ {
		if _, err := transcode.Decode(sample[:len(sample)-trim], label); err == nil {
			return true
		}
	}
	return false
}

// looksBinary reports C0 control bytes other than whitespace and ESC
func looksBinary(sample []byte) bool {
	for _, b := range sample {
		if b >= 0x20 {
			continue
		}
		switch b {
		case '\t', '\n', '\v', '\f', '\r', 0x1B:
		default:
			return true
		}
	}
	return false
}

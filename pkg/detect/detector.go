package detect

import (
	"context"
	"fmt"
	"io"

	"github.com/sdejongh/utfnorris/pkg/models"
	"github.com/sdejongh/utfnorris/pkg/storage"
)

// DefaultSampleSize is the number of leading bytes handed to the guesser
const DefaultSampleSize = 4096

// Confidence is 0.8 whenever the statistical guesser fired and 0.5
// otherwise, even when a BOM decided the encoding
const (
	confidenceGuessed  = 0.8
	confidenceFallback = 0.5
)

// Detector determines the probable encoding of a byte buffer
type Detector struct {
	guesser    Guesser
	sampleSize int
}

// NewDetector creates a detector backed by chardet
func NewDetector(sampleSize int) *Detector {
	if sampleSize <= 0 {
		sampleSize = DefaultSampleSize
	}
	return &Detector{
		guesser:    NewChardetGuesser(),
		sampleSize: sampleSize,
	}
}

// SetGuesser replaces the statistical guesser
func (d *Detector) SetGuesser(g Guesser) {
	d.guesser = g
}

// SampleSize returns the configured sample size
func (d *Detector) SampleSize() int {
	return d.sampleSize
}

// Detect inspects data and returns a best-guess encoding.
//
// A BOM always decides the label; the guesser's label is used only when
// there is no BOM. The guesser still runs on BOM-prefixed data because its
// verdict alone sets the confidence. An empty buffer never reaches it.
func (d *Detector) Detect(data []byte) models.EncodingResult {
	sampleSize := len(data)
	if sampleSize > d.sampleSize {
		sampleSize = d.sampleSize
	}

	result := models.EncodingResult{
		Encoding:   models.EncodingUnknown,
		SampleSize: sampleSize,
		FileSize:   int64(len(data)),
	}

	bomLabel, hasBOM := DetectBOM(data)
	result.HasBOM = hasBOM

	var guessed string
	var hasGuess bool
	if sampleSize > 0 && d.guesser != nil {
		guessed, hasGuess = d.guesser.Guess(data[:sampleSize])
		hasGuess = hasGuess && guessed != ""
	}

	switch {
	case hasBOM:
		result.Encoding = bomLabel
	case hasGuess:
		result.Encoding = guessed
	default:
		return result
	}

	if hasGuess {
		result.Confidence = confidenceGuessed
	} else {
		result.Confidence = confidenceFallback
	}
	result.IsSupported = IsSupported(result.Encoding)

	return result
}

// DetectReader reads r to the end and detects its encoding.
// A read failure is reported in the result, never as a Go error.
func (d *Detector) DetectReader(r io.Reader) models.EncodingResult {
	data, err := io.ReadAll(r)
	if err != nil {
		return Failure(fmt.Errorf("failed to read data: %w", err))
	}
	return d.Detect(data)
}

// DetectFile reads path from backend and detects its encoding.
// Read failures are reported in the result.
func (d *Detector) DetectFile(ctx context.Context, backend storage.Backend, path string) models.EncodingResult {
	data, err := backend.ReadFile(ctx, path, 0)
	if err != nil {
		return Failure(err)
	}
	return d.Detect(data)
}

// Failure builds the result reported when the bytes could not be read
func Failure(err error) models.EncodingResult {
	return models.EncodingResult{
		Encoding:    models.EncodingUnknown,
		Confidence:  0,
		IsSupported: false,
		Error:       err.Error(),
	}
}

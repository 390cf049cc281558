package models

import (
	"time"
)

// ConvertedEncodingUTF8 is the label recorded on every successful outcome
const ConvertedEncodingUTF8 = "utf8"

// ErrorKind categorizes why a single file failed to convert
type ErrorKind string

const (
	// KindNone means the file converted successfully
	KindNone ErrorKind = ""
	// KindUnsupported means the detected encoding is not on the allow-list
	KindUnsupported ErrorKind = "unsupported"
	// KindDecode means the bytes are invalid for the detected encoding
	KindDecode ErrorKind = "decode"
	// KindMismatch means validation found the converted text differs from the original
	KindMismatch ErrorKind = "mismatch"
	// KindIO means reading the source or writing the destination failed
	KindIO ErrorKind = "io"
)

// BatchFile is one input of a batch conversion
type BatchFile struct {
	// ID is the caller's stable identifier for the file
	ID string `json:"id"`

	// SourcePath is the path of the original bytes in the storage backend
	SourcePath string `json:"source_path"`

	// Name is the user-facing file name; its extension is kept on the output
	Name string `json:"name"`
}

// ConversionOutcome is the per-file result of a batch run.
// Outcomes are appended in input order and never mutated afterwards.
type ConversionOutcome struct {
	FileID            string        `json:"file_id"`
	Name              string        `json:"name"`
	Success           bool          `json:"success"`
	OriginalEncoding  string        `json:"original_encoding,omitempty"`
	ConvertedEncoding string        `json:"converted_encoding,omitempty"`
	ConvertedPath     string        `json:"converted_path,omitempty"`
	Reused            bool          `json:"reused,omitempty"` // ConvertedPath is the source itself
	Checksum          string        `json:"checksum,omitempty"`
	BytesRead         int64         `json:"bytes_read"`
	BytesWritten      int64         `json:"bytes_written"`
	ErrorKind         ErrorKind     `json:"error_kind,omitempty"`
	Error             string        `json:"error,omitempty"`
	Duration          time.Duration `json:"duration"`
}

// Failure builds a failed outcome for the given file
func Failure(file BatchFile, kind ErrorKind, err error) ConversionOutcome {
	return ConversionOutcome{
		FileID:    file.ID,
		Name:      file.Name,
		Success:   false,
		ErrorKind: kind,
		Error:     err.Error(),
	}
}

// BatchResult is the result of converting a list of files.
// Success is false only when the loop itself could not complete.
type BatchResult struct {
	Success  bool                `json:"success"`
	Outcomes []ConversionOutcome `json:"outcomes"`
	Error    string              `json:"error,omitempty"`
}

// Converted returns the number of successful outcomes
func (r *BatchResult) Converted() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Success {
			n++
		}
	}
	return n
}

// Failed returns the number of failed outcomes
func (r *BatchResult) Failed() int {
	return len(r.Outcomes) - r.Converted()
}

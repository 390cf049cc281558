package models

// EncodingUnknown is reported when neither a BOM nor the statistical
// detector produced an encoding label
const EncodingUnknown = "unknown"

// EncodingResult represents the outcome of detecting a file's encoding
type EncodingResult struct {
	// Encoding is the normalized encoding label (e.g. "utf8", "gb18030")
	Encoding string `json:"encoding"`

	// Confidence is a heuristic score in [0, 1]
	Confidence float64 `json:"confidence"`

	// IsSupported indicates the label is on the conversion allow-list
	IsSupported bool `json:"is_supported"`

	// HasBOM indicates a byte-order mark was found at the start of the data
	HasBOM bool `json:"has_bom"`

	// SampleSize is the number of bytes examined by the statistical detector
	SampleSize int `json:"sample_size"`

	// FileSize is the total number of bytes
	FileSize int64 `json:"file_size"`

	// Error is populated when the bytes could not be read
	Error string `json:"error,omitempty"`
}

// Failed reports whether detection could not read the data at all
func (r EncodingResult) Failed() bool {
	return r.Error != ""
}

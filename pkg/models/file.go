package models

import (
	"time"
)

// FileStatus represents where a file is in the upload/convert lifecycle
type FileStatus string

const (
	// FileUploaded indicates the file is stored and its encoding detected
	FileUploaded FileStatus = "uploaded"
	// FileConverting indicates the file belongs to a running batch
	FileConverting FileStatus = "converting"
	// FileConverted indicates a UTF-8 version is available at ConvertedPath
	FileConverted FileStatus = "converted"
	// FileError indicates the last conversion attempt failed
	FileError FileStatus = "error"
)

// FileRecord represents a file known to the orchestration layer
type FileRecord struct {
	ID                  string     `json:"id"`
	Name                string     `json:"name"`
	Size                int64      `json:"size"`
	UploadTime          time.Time  `json:"upload_time"`
	Status              FileStatus `json:"status"`
	OriginalPath        string     `json:"original_path"`
	ConvertedPath       string     `json:"converted_path,omitempty"`
	OriginalEncoding    string     `json:"original_encoding,omitempty"`
	EncodingDisplayName string     `json:"encoding_display_name,omitempty"`
	ConvertedEncoding   string     `json:"converted_encoding,omitempty"`
	NeedsConversion     bool       `json:"needs_conversion"`
	ErrorMessage        string     `json:"error_message,omitempty"`
}

// BatchFile returns the batch input describing this record
func (r *FileRecord) BatchFile() BatchFile {
	return BatchFile{
		ID:         r.ID,
		SourcePath: r.OriginalPath,
		Name:       r.Name,
	}
}

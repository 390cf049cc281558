package models

import (
	"errors"
	"testing"
	"time"
)

// ============== EncodingResult Tests ==============

func TestEncodingResultFailed(t *testing.T) {
	if (EncodingResult{Encoding: "gbk", IsSupported: true}).Failed() {
		t.Error("a detected encoding is not a failure")
	}
	if !(EncodingResult{Encoding: EncodingUnknown, Error: "read error"}).Failed() {
		t.Error("a result with an error message is a failure")
	}
}

// ============== Outcome Tests ==============

func TestFailure(t *testing.T) {
	file := BatchFile{ID: "f1", SourcePath: "/in/a.txt", Name: "a.txt"}
	o := Failure(file, KindDecode, errors.New("decode failed: bad byte"))

	if o.Success {
		t.Error("Failure should not be successful")
	}
	if o.FileID != "f1" || o.Name != "a.txt" {
		t.Errorf("identity not copied: %+v", o)
	}
	if o.ErrorKind != KindDecode {
		t.Errorf("ErrorKind = %s, want decode", o.ErrorKind)
	}
	if o.Error != "decode failed: bad byte" {
		t.Errorf("Error = %q", o.Error)
	}
	if o.ConvertedEncoding != "" || o.ConvertedPath != "" {
		t.Error("failed outcomes carry no converted location")
	}
}

func TestBatchResultCounts(t *testing.T) {
	r := &BatchResult{
		Success: true,
		Outcomes: []ConversionOutcome{
			{FileID: "1", Success: true},
			{FileID: "2", Success: false},
			{FileID: "3", Success: true, Reused: true},
		},
	}

	if r.Converted() != 2 {
		t.Errorf("Converted() = %d, want 2", r.Converted())
	}
	if r.Failed() != 1 {
		t.Errorf("Failed() = %d, want 1", r.Failed())
	}
}

// ============== Progress Tests ==============

func TestTaskStatusIsTerminal(t *testing.T) {
	tests := []struct {
		status   TaskStatus
		terminal bool
	}{
		{TaskProcessing, false},
		{TaskCompleted, true},
		{TaskError, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.IsTerminal(); got != tt.terminal {
				t.Errorf("IsTerminal() = %v, want %v", got, tt.terminal)
			}
		})
	}
}

func TestNewBatchProgress(t *testing.T) {
	p := NewBatchProgress("task", 4)

	if p.Status != TaskProcessing {
		t.Errorf("Status = %s, want processing", p.Status)
	}
	if p.TotalFiles != 4 || p.CompletedFiles != 0 || p.Progress != 0 {
		t.Errorf("unexpected counters: %+v", p)
	}
	if p.StartedAt.IsZero() || p.FinishedAt != nil {
		t.Error("new progress should be started and not finished")
	}
}

// ============== FileRecord Tests ==============

func TestFileRecordBatchFile(t *testing.T) {
	r := &FileRecord{ID: "x", Name: "notes.txt", OriginalPath: "/uploads/x", Status: FileUploaded}

	got := r.BatchFile()
	want := BatchFile{ID: "x", SourcePath: "/uploads/x", Name: "notes.txt"}
	if got != want {
		t.Errorf("BatchFile() = %+v, want %+v", got, want)
	}
}

// ============== BatchReport Tests ==============

func TestNewBatchReport(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Second)

	ok := ConversionOutcome{Success: true, BytesRead: 4, BytesWritten: 6}
	reused := ConversionOutcome{Success: true, Reused: true, BytesRead: 5}
	failed := ConversionOutcome{Success: false, BytesRead: 8}

	tests := []struct {
		name   string
		total  int
		result BatchResult
		status BatchStatus
		exit   int
	}{
		{"all converted", 2, BatchResult{Success: true, Outcomes: []ConversionOutcome{ok, reused}}, StatusSuccess, 0},
		{"partial", 3, BatchResult{Success: true, Outcomes: []ConversionOutcome{ok, failed, reused}}, StatusPartial, 1},
		{"all failed", 2, BatchResult{Success: true, Outcomes: []ConversionOutcome{failed, failed}}, StatusFailed, 2},
		{"batch fault", 3, BatchResult{Success: false, Outcomes: []ConversionOutcome{ok}, Error: "batch aborted: boom"}, StatusFailed, 2},
		{"cancelled", 3, BatchResult{Success: false, Outcomes: []ConversionOutcome{ok}, Error: ErrCancelled}, StatusCancelled, 3},
		{"empty", 0, BatchResult{Success: true}, StatusSuccess, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := NewBatchReport("t", "/out", tt.total, &tt.result, start, end)

			if report.Status != tt.status {
				t.Errorf("Status = %s, want %s", report.Status, tt.status)
			}
			if report.Status.ExitCode() != tt.exit {
				t.Errorf("ExitCode() = %d, want %d", report.Status.ExitCode(), tt.exit)
			}
			if report.Duration != 2*time.Second {
				t.Errorf("Duration = %v", report.Duration)
			}
			if report.Stats.FilesTotal != tt.total {
				t.Errorf("FilesTotal = %d, want %d", report.Stats.FilesTotal, tt.total)
			}
		})
	}

	report := NewBatchReport("t", "/out", 3, &BatchResult{Success: true, Outcomes: []ConversionOutcome{ok, failed, reused}}, start, end)
	if report.Stats.FilesConverted != 1 || report.Stats.FilesReused != 1 || report.Stats.FilesFailed != 1 {
		t.Errorf("unexpected stats: %+v", report.Stats)
	}
	if report.Stats.BytesRead != 17 || report.Stats.BytesWritten != 6 {
		t.Errorf("unexpected byte counts: %+v", report.Stats)
	}
}

// ============== ConvertOperation Tests ==============

func TestConvertOperationValidate(t *testing.T) {
	files := []BatchFile{
		{ID: "1", SourcePath: "/a.txt", Name: "a.txt"},
		{ID: "2", SourcePath: "/b.txt", Name: "b.txt"},
	}

	tests := []struct {
		name    string
		op      ConvertOperation
		wantErr bool
		field   string
	}{
		{"valid", ConvertOperation{Files: files, DestDir: "/out", SampleSize: 4096}, false, ""},
		{"unlimited files", ConvertOperation{Files: files, DestDir: "/out", SampleSize: 64, MaxFiles: 0}, false, ""},
		{"no files", ConvertOperation{DestDir: "/out", SampleSize: 4096}, true, "Files"},
		{"no dest", ConvertOperation{Files: files, SampleSize: 4096}, true, "DestDir"},
		{"too many", ConvertOperation{Files: files, DestDir: "/out", SampleSize: 4096, MaxFiles: 1}, true, "Files"},
		{"sample too small", ConvertOperation{Files: files, DestDir: "/out", SampleSize: 10}, true, "SampleSize"},
		{"missing path", ConvertOperation{Files: []BatchFile{{ID: "1"}}, DestDir: "/out", SampleSize: 4096}, true, "Files"},
		{"duplicate id", ConvertOperation{Files: []BatchFile{files[0], files[0]}, DestDir: "/out", SampleSize: 4096}, true, "Files"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.op.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var verr *ValidationError
				if !errors.As(err, &verr) {
					t.Fatalf("expected *ValidationError, got %T", err)
				}
				if verr.Field != tt.field {
					t.Errorf("Field = %s, want %s", verr.Field, tt.field)
				}
			}
		})
	}
}

func TestValidationError(t *testing.T) {
	err := &ValidationError{Field: "DestDir", Message: "destination directory is required"}
	if err.Error() != "DestDir: destination directory is required" {
		t.Errorf("Error() = %q", err.Error())
	}
}

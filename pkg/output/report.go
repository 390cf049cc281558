package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/sdejongh/utfnorris/pkg/detect"
	"github.com/sdejongh/utfnorris/pkg/models"
)

// WriteReport writes the per-file outcome list of a batch to path.
// Format can be "human" or "json".
func WriteReport(fs afero.Fs, report *models.BatchReport, path string, format string) error {
	file, err := fs.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer file.Close()

	switch format {
	case "json":
		err = writeReportJSON(report, file)
	default: // "human"
		err = writeReportHuman(report, file)
	}
	if err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	return nil
}

// writeReportHuman lists failures grouped by kind, then successes
func writeReportHuman(report *models.BatchReport, w io.Writer) error {
	fmt.Fprintf(w, "Conversion Report\n")
	fmt.Fprintf(w, "=================\n\n")
	fmt.Fprintf(w, "Generated: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(w, "Task: %s\n", report.TaskID)
	fmt.Fprintf(w, "Destination: %s\n", report.DestDir)
	fmt.Fprintf(w, "Status: %s\n\n", report.Status)

	if report.Error != "" {
		fmt.Fprintf(w, "Batch error: %s\n\n", report.Error)
	}

	byKind := make(map[models.ErrorKind][]models.ConversionOutcome)
	var converted, reused []models.ConversionOutcome
	for _, o := range report.Outcomes {
		switch {
		case !o.Success:
			byKind[o.ErrorKind] = append(byKind[o.ErrorKind], o)
		case o.Reused:
			reused = append(reused, o)
		default:
			converted = append(converted, o)
		}
	}

	kindOrder := []models.ErrorKind{
		models.KindUnsupported,
		models.KindDecode,
		models.KindMismatch,
		models.KindIO,
	}

	kindLabels := map[models.ErrorKind]string{
		models.KindUnsupported: "Unsupported Encodings",
		models.KindDecode:      "Decode Failures",
		models.KindMismatch:    "Validation Mismatches",
		models.KindIO:          "I/O Errors",
	}

	for _, kind := range kindOrder {
		outcomes := byKind[kind]
		if len(outcomes) == 0 {
			continue
		}

		writeHeading(w, fmt.Sprintf("%s (%d files)", kindLabels[kind], len(outcomes)))
		for _, o := range outcomes {
			fmt.Fprintf(w, "  %s\n", o.Name)
			if o.OriginalEncoding != "" {
				fmt.Fprintf(w, "    Encoding: %s\n", detect.DisplayName(o.OriginalEncoding))
			}
			fmt.Fprintf(w, "    Error:    %s\n\n", o.Error)
		}
	}

	if len(converted) > 0 {
		writeHeading(w, fmt.Sprintf("Converted (%d files)", len(converted)))
		for _, o := range converted {
			fmt.Fprintf(w, "  %s\n", o.Name)
			fmt.Fprintf(w, "    From:     %s\n", detect.DisplayName(o.OriginalEncoding))
			fmt.Fprintf(w, "    Output:   %s\n", o.ConvertedPath)
			if len(o.Checksum) >= 12 {
				fmt.Fprintf(w, "    BLAKE3:   %s\n", o.Checksum[:12])
			}
			fmt.Fprintf(w, "\n")
		}
	}

	if len(reused) > 0 {
		writeHeading(w, fmt.Sprintf("Already UTF-8 (%d files)", len(reused)))
		for _, o := range reused {
			fmt.Fprintf(w, "  %s\n", o.Name)
		}
		fmt.Fprintf(w, "\n")
	}

	return nil
}

func writeHeading(w io.Writer, label string) {
	fmt.Fprintf(w, "%s\n", label)
	fmt.Fprintf(w, "%s\n", strings.Repeat("-", len(label)))
}

// writeReportJSON writes the outcomes in JSON format
func writeReportJSON(report *models.BatchReport, w io.Writer) error {
	output := struct {
		Generated string                     `json:"generated"`
		TaskID    string                     `json:"task_id"`
		DestDir   string                     `json:"dest_dir"`
		Status    string                     `json:"status"`
		Error     string                     `json:"error,omitempty"`
		Outcomes  []models.ConversionOutcome `json:"outcomes"`
	}{
		Generated: time.Now().Format(time.RFC3339),
		TaskID:    report.TaskID,
		DestDir:   report.DestDir,
		Status:    string(report.Status),
		Error:     report.Error,
		Outcomes:  report.Outcomes,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sdejongh/utfnorris/pkg/detect"
	"github.com/sdejongh/utfnorris/pkg/models"
	"github.com/sdejongh/utfnorris/pkg/storage"
)

// detectionEntry is one line of detect output
type detectionEntry struct {
	File        string `json:"file"`
	DisplayName string `json:"display_name"`
	models.EncodingResult
}

// NewDetectCommand creates the detect command
func NewDetectCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "detect FILE...",
		Short: "Detect the encoding of text files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			backend := storage.NewOS()
			defer backend.Close()

			detector := detect.NewDetector(cfg.Detection.SampleSize)

			entries := make([]detectionEntry, 0, len(args))
			failed := 0
			for _, path := range args {
				result := detector.DetectFile(ctx, backend, path)
				if result.Failed() {
					failed++
				}
				entries = append(entries, detectionEntry{
					File:           path,
					DisplayName:    detect.DisplayName(result.Encoding),
					EncodingResult: result,
				})
			}

			out := cmd.OutOrStdout()
			switch format {
			case "json":
				encoder := json.NewEncoder(out)
				encoder.SetIndent("", "  ")
				if err := encoder.Encode(entries); err != nil {
					return err
				}
			case "human":
				tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "FILE\tENCODING\tCONFIDENCE\tBOM\tSUPPORTED")
				for _, e := range entries {
					if e.Failed() {
						fmt.Fprintf(tw, "%s\terror: %s\t\t\t\n", e.File, e.Error)
						continue
					}
					fmt.Fprintf(tw, "%s\t%s\t%.2f\t%s\t%s\n",
						e.File, e.DisplayName, e.Confidence, yesNo(e.HasBOM), yesNo(e.IsSupported))
				}
				if err := tw.Flush(); err != nil {
					return err
				}
			default:
				return fmt.Errorf("invalid output format: %s (valid: human, json)", format)
			}

			if failed > 0 {
				return &ExitError{Code: 1}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "output", "o", "human", "output format: human, json")

	return cmd
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

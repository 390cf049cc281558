package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sdejongh/utfnorris/pkg/convert"
	"github.com/sdejongh/utfnorris/pkg/detect"
	"github.com/sdejongh/utfnorris/pkg/storage"
)

// NewValidateCommand creates the validate command
func NewValidateCommand() *cobra.Command {
	var encoding string

	cmd := &cobra.Command{
		Use:   "validate ORIGINAL CONVERTED",
		Short: "Check a converted file against its source",
		Long: `Decode ORIGINAL with the given encoding and compare the text with the
UTF-8 file CONVERTED. Without --encoding the encoding of ORIGINAL is
detected first.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			logger, err := createLogger(cfg.Logging, "")
			if err != nil {
				return fmt.Errorf("failed to create logger: %w", err)
			}
			defer logger.Close()

			backend := storage.NewOS()
			defer backend.Close()

			engine := convert.NewEngine(backend, detect.NewDetector(cfg.Detection.SampleSize), logger)

			if encoding == "" {
				detected := engine.Detector().DetectFile(ctx, backend, args[0])
				if detected.Failed() {
					return fmt.Errorf("cannot detect encoding of %s: %s", args[0], detected.Error)
				}
				encoding = detected.Encoding
			}

			if err := engine.ValidateFile(ctx, args[0], args[1], encoding); err != nil {
				return fmt.Errorf("validation failed: %w", err)
			}

			if !globalFlags.Quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "OK: %s matches %s decoded as %s\n",
					args[1], args[0], detect.DisplayName(encoding))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&encoding, "encoding", "e", "", "encoding of ORIGINAL (detected when empty)")

	return cmd
}

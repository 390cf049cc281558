package cli

import (
	"github.com/spf13/cobra"
)

// GlobalFlags holds flags shared by every command
type GlobalFlags struct {
	ConfigFile string
	Verbose    bool
	Quiet      bool
	SampleSize int
}

var globalFlags GlobalFlags

// AddGlobalFlags adds global flags to the root command
func AddGlobalFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()

	flags.StringVar(&globalFlags.ConfigFile, "config", "",
		"config file, YAML or TOML (default is $HOME/.config/utfnorris/config.yaml)")
	flags.BoolVarP(&globalFlags.Verbose, "verbose", "v", false,
		"log debug messages to stderr")
	flags.BoolVarP(&globalFlags.Quiet, "quiet", "q", false,
		"suppress non-error output")
	flags.IntVar(&globalFlags.SampleSize, "sample-size", 0,
		"bytes examined by the encoding detector (default from config: 4096)")
}

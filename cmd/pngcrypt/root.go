package main

import (
	"fmt"
	"os"

	"github.com/andresmejia3/pngcrypt/pkg/pngcrypt"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// Global flags
var (
	verbose bool
	strict  bool
)

var rootCmd = &cobra.Command{
	Use:   "pngcrypt",
	Short: "Hide encrypted messages inside PNG chunks",
	Long: `pngcrypt encrypts a short secret with a password and stores it in a custom
"crPt" chunk placed before the image data. The result is still a valid PNG.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		if verbose {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		} else {
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
		}
	},
}

// positionalArgs requires exactly the named positional arguments.
func positionalArgs(names ...string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) < len(names) {
			return fmt.Errorf("%w: %s is required", pngcrypt.ErrArgument, names[len(args)])
		}
		if len(args) > len(names) {
			return fmt.Errorf("%w: expected %d arguments, got %d", pngcrypt.ErrArgument, len(names), len(args))
		}
		return nil
	}
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&strict, "strict", false, "Reject chunks whose stored checksum does not match")
}

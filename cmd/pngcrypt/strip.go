package main

import (
	"github.com/andresmejia3/pngcrypt/pkg/pngcrypt"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var stripOut string

var stripCmd = &cobra.Command{
	Use:   "strip [png-path]",
	Short: "Write a copy of a PNG without its secret chunks",
	Args:  positionalArgs("png-path"),
	Run: func(cmd *cobra.Command, args []string) {
		sArgs := &pngcrypt.StripArgs{
			ImagePath: &args[0],
			Output:    &stripOut,
			Strict:    &strict,
		}
		removed, err := pngcrypt.StripFile(sArgs)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to strip image")
		}
		log.Info().Int("removed", removed).Str("output", stripOut).Msg("Stripped secret chunks")
	},
}

func init() {
	rootCmd.AddCommand(stripCmd)

	stripCmd.Flags().StringVarP(&stripOut, "output", "o", "", "Output path for the stripped image (required)")
	stripCmd.MarkFlagRequired("output")
}

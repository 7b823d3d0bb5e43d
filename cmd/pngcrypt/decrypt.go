package main

import (
	"os"

	"github.com/andresmejia3/pngcrypt/pkg/pngcrypt"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	decryptFlags struct {
		Pass string
	}
)

var decryptCmd = &cobra.Command{
	Use:   "decrypt [encrypted-png] [output-path]",
	Short: "Recover the secret from an encrypted PNG",
	Long: `Finds the first crPt chunk and decrypts it. The key derivation and any
Reed-Solomon protection are read from the file itself.`,
	Args:  positionalArgs("encrypted-png", "output-path"),
	Run: func(cmd *cobra.Command, args []string) {
		input := newPromptInput(os.Stdin, os.Stderr, int(os.Stdin.Fd()))
		if cmd.Flags().Changed("passphrase") {
			input.password = &decryptFlags.Pass
		}

		dArgs := &pngcrypt.DecryptArgs{
			ImagePath: &args[0],
			Output:    &args[1],
			Input:     input,
			Strict:    &strict,
		}

		if err := pngcrypt.DecryptFile(dArgs); err != nil {
			log.Fatal().Err(err).Msg("Failed to decrypt secret")
		}
		log.Info().Str("output", args[1]).Msg("Finished writing data to file")
	},
}

func init() {
	rootCmd.AddCommand(decryptCmd)

	decryptCmd.Flags().StringVarP(&decryptFlags.Pass, "passphrase", "p", "", "Password (prompted for when omitted)")
}

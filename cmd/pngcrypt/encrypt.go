package main

import (
	"os"

	"github.com/andresmejia3/pngcrypt/pkg/pngcrypt"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	encryptFlags struct {
		Out      string
		Pass     string
		Msg      string
		File     string
		KDF      string
		ECC      bool
		Progress bool
	}
)

var encryptCmd = &cobra.Command{
	Use:   "encrypt [png-path]",
	Short: "Encrypt a secret into a PNG",
	Long: `Copies the PNG to encrypted-<name> (or --output), inserting the encrypted
secret as a crPt chunk right before the first IDAT chunk. The secret and the
password are prompted for unless given by flags.`,
	Args: positionalArgs("png-path"),
	Run: func(cmd *cobra.Command, args []string) {
		if encryptFlags.Msg != "" && encryptFlags.File != "" {
			log.Fatal().Msg("message and file flags cannot both be provided")
		}

		input := newPromptInput(os.Stdin, os.Stderr, int(os.Stdin.Fd()))
		input.secretFile = encryptFlags.File
		if cmd.Flags().Changed("message") {
			input.secret = &encryptFlags.Msg
		}
		if cmd.Flags().Changed("passphrase") {
			input.password = &encryptFlags.Pass
		}
		if err := input.validate(); err != nil {
			log.Fatal().Err(err).Msg("Invalid arguments")
		}

		eArgs := &pngcrypt.EncryptArgs{
			ImagePath: &args[0],
			Output:    &encryptFlags.Out,
			Input:     input,
			KDF:       &encryptFlags.KDF,
			ECC:       &encryptFlags.ECC,
			Strict:    &strict,
			Progress:  &encryptFlags.Progress,
		}

		output, err := pngcrypt.EncryptFile(eArgs)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to encrypt secret")
		}
		log.Info().Str("output", output).Msg("Finished writing data to file")
	},
}

func init() {
	rootCmd.AddCommand(encryptCmd)

	encryptCmd.Flags().StringVarP(&encryptFlags.Out, "output", "o", "", "Output path (default: encrypted-<name> next to the source)")
	encryptCmd.Flags().StringVarP(&encryptFlags.Pass, "passphrase", "p", "", "Password (prompted for when omitted)")
	encryptCmd.Flags().StringVarP(&encryptFlags.Msg, "message", "m", "", "Secret to encrypt (prompted for when omitted)")
	encryptCmd.Flags().StringVarP(&encryptFlags.File, "file", "f", "", "Read the secret from a file instead. Use '-' for stdin (requires --passphrase).")
	encryptCmd.Flags().StringVarP(&encryptFlags.KDF, "kdf", "k", "sha512-256", "Key derivation: sha512-256, pbkdf2, scrypt, argon2id")
	encryptCmd.Flags().BoolVarP(&encryptFlags.ECC, "ecc", "e", false, "Protect the secret chunk with Reed-Solomon parity (recorded in the file)")
	encryptCmd.Flags().BoolVar(&encryptFlags.Progress, "progress", false, "Show a progress bar on stderr")
}

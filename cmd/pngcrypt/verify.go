package main

import (
	"fmt"

	"github.com/andresmejia3/pngcrypt/pkg/pngcrypt"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	verifyFlags struct {
		Original  string
		Encrypted string
		Heatmap   string
	}
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check that an encrypted PNG still renders like the original",
	Long:  `Decodes both images and compares every pixel. A chunk-only embed should report zero modified pixels.`,
	Run: func(cmd *cobra.Command, args []string) {
		vArgs := &pngcrypt.AnalyzeArgs{
			OriginalPath:  &verifyFlags.Original,
			EncryptedPath: &verifyFlags.Encrypted,
			HeatmapPath:   &verifyFlags.Heatmap,
		}
		result, err := pngcrypt.Analyze(vArgs)
		if err != nil {
			log.Fatal().Err(err).Msg("Verification failed")
		}

		fmt.Printf("Dimensions:       %dx%d\n", result.Width, result.Height)
		fmt.Printf("Modified Pixels:  %d\n", result.ModifiedPixels)
		fmt.Printf("MSE:              %.4f\n", result.MSE)
		fmt.Printf("PSNR:             %.2f dB\n", result.PSNR)
		if !result.Identical() {
			log.Fatal().Int("modified", result.ModifiedPixels).Msg("Encrypted image renders differently from the original")
		}
		fmt.Println("✅ Pixels are identical")
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().StringVarP(&verifyFlags.Original, "original", "o", "", "Path to original image (required)")
	verifyCmd.MarkFlagRequired("original")
	verifyCmd.Flags().StringVarP(&verifyFlags.Encrypted, "encrypted", "s", "", "Path to encrypted image (required)")
	verifyCmd.MarkFlagRequired("encrypted")
	verifyCmd.Flags().StringVarP(&verifyFlags.Heatmap, "heatmap", "d", "", "Optional output path for a difference heatmap")
}

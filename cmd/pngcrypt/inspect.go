package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/andresmejia3/pngcrypt/pkg/pngcrypt"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [png-path]",
	Short: "List the chunks of a PNG and whether it carries a secret",
	Args:  positionalArgs("png-path"),
	RunE: func(cmd *cobra.Command, args []string) error {
		imagePath := args[0]

		info, err := pngcrypt.GetInfo(imagePath)
		if err != nil {
			return fmt.Errorf("failed to inspect %s: %w", imagePath, err)
		}

		wtr := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(wtr, "#\tType\tLength\tCRC\tCRC OK\tKind")
		fmt.Fprintln(wtr, "-\t----\t------\t---\t------\t----")
		for _, c := range info.Chunks {
			kind := "ancillary"
			if c.Critical {
				kind = "critical"
			}
			fmt.Fprintf(wtr, "%d\t%s\t%d\t%08x\t%t\t%s\n", c.Index, c.Type, c.Length, c.Checksum, c.ChecksumOK, kind)
		}
		wtr.Flush()

		fmt.Println()
		fmt.Printf("Secret chunk:     %t\n", info.HasSecret)
		if info.HasSecret {
			fmt.Printf("Payload Size:     %d bytes\n", info.SecretLength)
			fmt.Printf("Key Derivation:   %s\n", info.KDF)
			fmt.Printf("Reed-Solomon:     %t\n", info.ECC)
			fmt.Printf("Before IDAT:      %t\n", info.SecretBeforeIDAT)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

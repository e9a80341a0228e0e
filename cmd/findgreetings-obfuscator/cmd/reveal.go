package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Patrickazonzo/findgreetings/internal/obfuscator"
)

var revealShowClass bool

// revealCmd decodes a single obfuscated file back to its payload.
var revealCmd = &cobra.Command{
	Use:   "reveal <obfuscated_file>",
	Short: "Decodes an obfuscated file back to its original content",
	Long: `Detects which wrapper template an obfuscated file uses, extracts the
base64 payload and writes the decoded bytes to stdout.

Use --class to print only the detected template class.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filePath := args[0]
		cmd.SilenceUsage = true

		content, err := os.ReadFile(filePath)
		if err != nil {
			return fmt.Errorf("error reading file %s: %w", filePath, err)
		}

		class, payload, err := obfuscator.Reveal(string(content))
		if err != nil {
			return fmt.Errorf("cannot reveal %s: %w", filePath, err)
		}
		if revealShowClass {
			fmt.Fprintln(cmd.OutOrStdout(), class)
			return nil
		}
		if cfg != nil && cfg.DebugMode && !cfg.Silent {
			fmt.Fprintf(os.Stderr, "Debug: %s uses the %s template (%d bytes)\n", filePath, class, len(payload))
		}
		_, err = cmd.OutOrStdout().Write(payload)
		return err
	},
}

func init() {
	rootCmd.AddCommand(revealCmd)
	revealCmd.Flags().BoolVar(&revealShowClass, "class", false, "Print the detected template class instead of the payload")
}

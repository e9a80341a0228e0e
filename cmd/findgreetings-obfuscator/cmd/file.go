package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Patrickazonzo/findgreetings/internal/mirror"
	"github.com/Patrickazonzo/findgreetings/internal/obfuscator"
)

var outputFile string // Flag variable for output file path

// fileCmd obfuscates one file without touching the target tree.
var fileCmd = &cobra.Command{
	Use:   "file <path>",
	Short: "Obfuscate a single file",
	Long: `Scans the source tree for assets, then rewrites and wraps a single file
exactly as a full build would, and writes the result to stdout or a file.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			return fmt.Errorf("configuration not loaded")
		}
		cmd.SilenceUsage = true
		filePath := args[0]

		builder, err := mirror.NewBuilder(cfg)
		if err != nil {
			return err
		}
		reg, err := builder.BuildRegistry()
		if err != nil {
			return err
		}
		octx, err := obfuscator.NewObfuscationContext(cfg, reg)
		if err != nil {
			return fmt.Errorf("failed to initialize obfuscation context: %w", err)
		}

		outputContent, err := obfuscator.ProcessFile(filePath, octx)
		if err != nil {
			return err
		}

		if outputFile != "" {
			if !cfg.Silent {
				fmt.Fprintf(os.Stderr, "Info: Writing output to file: %s\n", outputFile)
			}
			if err := os.WriteFile(outputFile, []byte(outputContent), 0644); err != nil {
				return fmt.Errorf("error writing to output file %s: %w", outputFile, err)
			}
			return nil
		}
		fmt.Fprint(cmd.OutOrStdout(), outputContent)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fileCmd)
	fileCmd.Flags().StringVar(&outputFile, "out-file", "", "Output file path (default: stdout)")
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Patrickazonzo/findgreetings/internal/mirror"
)

var verifyManifestPath string

// verifyCmd checks an obfuscated tree against the manifest written by a --manifest build.
var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Checks the obfuscated output against its digest manifest",
	Long: `Recomputes the digest of every file under the target directory and
compares it with the manifest written next to the archive by a build run
with --manifest. Exits non-zero if any file is missing, modified or unexpected.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		if err := cfg.Resolve(); err != nil {
			return err
		}
		manifestPath := verifyManifestPath
		if manifestPath == "" {
			manifestPath = mirror.ManifestPath(cfg.ArchivePath)
		}

		problems, err := mirror.VerifyManifest(cfg.TargetDirectory, manifestPath)
		if err != nil {
			return err
		}
		for _, p := range problems {
			fmt.Fprintln(cmd.OutOrStdout(), p)
		}
		if len(problems) > 0 {
			return fmt.Errorf("%d mismatch(es) between %s and %s", len(problems), cfg.TargetDirectory, manifestPath)
		}
		if !cfg.Silent {
			fmt.Fprintf(cmd.OutOrStdout(), "Info: %s matches %s\n", cfg.TargetDirectory, manifestPath)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
	verifyCmd.Flags().StringVar(&verifyManifestPath, "file", "", "Manifest to check against (default is <archive>.manifest)")
}

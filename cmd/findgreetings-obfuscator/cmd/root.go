// Package cmd implements the command line interface for the application.
package cmd

import (
	"fmt"
	"os"

	"github.com/Patrickazonzo/findgreetings/internal/config"
	"github.com/Patrickazonzo/findgreetings/internal/mirror"

	"github.com/spf13/cobra"
)

var (
	cfgFile string         // Variable to hold the config file path from the flag
	cfg     *config.Config // Global variable to hold the loaded configuration

	// Flag variables mapped to config fields for override
	silentMode   bool   // -> cfg.Silent
	debugMode    bool   // -> cfg.DebugMode
	sourceDir    string // -> cfg.SourceDirectory
	targetDir    string // -> cfg.TargetDirectory
	archivePath  string // -> cfg.ArchivePath
	replaceMode  string // -> cfg.ReplaceMode
	withManifest bool   // -> cfg.Manifest
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "findgreetings-obfuscator",
	Short: "Builds an obfuscated, self-contained copy of a project tree.",
	Long: `findgreetings-obfuscator scans the source tree for binary media, inlines
every reference to it as a data URI, wraps each remaining file in a
self-decoding base64 template, and packages the result as a zip archive.

Run without arguments from the project root:
  findgreetings-obfuscator
  findgreetings-obfuscator --source ./site --output ./out --archive ./out.zip`,
	Args:          cobra.NoArgs,
	SilenceErrors: true,
	// PersistentPreRunE runs before any subcommand's RunE.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil { // Only load config once
			loadedCfg, err := config.LoadConfig(cfgFile)
			if err != nil {
				return fmt.Errorf("error loading configuration: %w", err)
			}
			cfg = loadedCfg

			// Apply command-line flag overrides *after* loading config file and env
			applyFlagOverrides(cfg, cmd)
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		builder, err := mirror.NewBuilder(cfg)
		if err != nil {
			return err
		}
		res, err := builder.Run()
		if err != nil {
			return err
		}

		fmt.Printf("Created obfuscated archive at %s\n", res.ArchivePath)
		return nil
	},
}

// applyFlagOverrides applies command-line flag values to the config struct.
// Only overrides if the flag was explicitly set by the user via cmd.Flags().Changed().
func applyFlagOverrides(cfg *config.Config, cmd *cobra.Command) {
	if cmd.Flags().Changed("silent") {
		cfg.Silent = silentMode
	}
	if cmd.Flags().Changed("debug") {
		cfg.DebugMode = debugMode
	}
	if cmd.Flags().Changed("source") {
		cfg.SourceDirectory = sourceDir
	}
	if cmd.Flags().Changed("output") {
		cfg.TargetDirectory = targetDir
	}
	if cmd.Flags().Changed("archive") {
		cfg.ArchivePath = archivePath
	}
	if cmd.Flags().Changed("replace-mode") {
		cfg.ReplaceMode = replaceMode
	}
	if cmd.Flags().Changed("manifest") {
		cfg.Manifest = withManifest
	}
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./config.yaml if present)")

	rootCmd.PersistentFlags().BoolVarP(&silentMode, "silent", "s", false, "Suppress informational output (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Print per-file debug output (overrides config)")
	rootCmd.PersistentFlags().StringVar(&sourceDir, "source", "", "Source tree to obfuscate (default is the working directory)")
	rootCmd.PersistentFlags().StringVarP(&targetDir, "output", "o", "", "Directory for the obfuscated copy (default is a sibling of the source)")
	rootCmd.PersistentFlags().StringVar(&archivePath, "archive", "", "Path of the zip archive (default is a sibling of the source)")
	rootCmd.PersistentFlags().StringVar(&replaceMode, "replace-mode", config.ReplaceModeSequential, "Reference replacement strategy: sequential or longest")
	rootCmd.PersistentFlags().BoolVar(&withManifest, "manifest", false, "Write a digest manifest next to the archive")
}

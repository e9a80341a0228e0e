// Package api provides the public API for using the tree obfuscator as a library.
//
// This package exposes the same pipeline the command-line interface runs:
// scan a source tree for binary assets, inline references to them, wrap
// every other file in a self-decoding template and archive the result.
// Single strings and files can also be obfuscated on their own.
//
// Basic usage example:
//
//	obf, err := api.NewObfuscator(api.Options{SourceDirectory: "./site"})
//	if err != nil {
//	    log.Fatalf("Failed to create obfuscator: %v", err)
//	}
//
//	res, err := obf.Build()
//	if err != nil {
//	    log.Fatalf("Failed to build archive: %v", err)
//	}
//
//	fmt.Println(res.ArchivePath) // ../findgreetings-obfuscated.zip
package api

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Patrickazonzo/findgreetings/internal/assets"
	"github.com/Patrickazonzo/findgreetings/internal/config"
	"github.com/Patrickazonzo/findgreetings/internal/mirror"
	"github.com/Patrickazonzo/findgreetings/internal/obfuscator"
)

// PrintInfo prints formatted information to stdout, respecting the Testing flag.
// If Testing mode is active, no output will be generated.
// This function forwards to the internal config.PrintInfo function.
func PrintInfo(format string, args ...interface{}) {
	config.PrintInfo(format, args...)
}

// Obfuscator represents the main obfuscation engine.
// It encapsulates the configuration and the context shared by every file.
type Obfuscator struct {
	// Context holds the asset registry and the reference rewriter
	Context *obfuscator.ObfuscationContext
	// Config holds the configuration settings for obfuscation
	Config *config.Config
}

// Options represents configuration options for creating a new Obfuscator instance.
// Non-empty path fields override the configuration file.
type Options struct {
	// ConfigPath is the path to a YAML configuration file
	// If empty, ./config.yaml is used when present, otherwise defaults
	ConfigPath string

	// Silent suppresses informational messages during obfuscation
	Silent bool

	// SourceDirectory is the tree to scan for assets and to mirror.
	// When empty, ObfuscateText and ObfuscateFile inline nothing and
	// Build uses the working directory.
	SourceDirectory string

	// TargetDirectory receives the obfuscated copy
	TargetDirectory string

	// ArchivePath is where the zip archive is written
	ArchivePath string
}

// NewObfuscator creates a new Obfuscator instance using the provided options.
//
// When SourceDirectory is set, its asset registry is built immediately so
// that ObfuscateText and ObfuscateFile inline references the same way Build does.
//
// Returns an error if the configuration cannot be loaded or the source cannot be scanned.
func NewObfuscator(options Options) (*Obfuscator, error) {
	cfg, err := config.LoadConfig(options.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if options.Silent {
		cfg.Silent = true
	}
	if options.SourceDirectory != "" {
		cfg.SourceDirectory = options.SourceDirectory
	}
	if options.TargetDirectory != "" {
		cfg.TargetDirectory = options.TargetDirectory
	}
	if options.ArchivePath != "" {
		cfg.ArchivePath = options.ArchivePath
	}

	var reg *assets.Registry
	if cfg.SourceDirectory != "" {
		builder, err := mirror.NewBuilder(cfg)
		if err != nil {
			return nil, err
		}
		if reg, err = builder.BuildRegistry(); err != nil {
			return nil, fmt.Errorf("failed to scan source directory: %w", err)
		}
	}

	ctx, err := obfuscator.NewObfuscationContext(cfg, reg)
	if err != nil {
		return nil, fmt.Errorf("failed to create obfuscation context: %w", err)
	}

	return &Obfuscator{
		Context: ctx,
		Config:  cfg,
	}, nil
}

// ObfuscateText rewrites asset references in text and wraps it in the
// template chosen by name's extension. It never fails.
func (o *Obfuscator) ObfuscateText(name, text string) string {
	return o.Context.ObfuscateText(name, text)
}

// ObfuscateFile obfuscates a file and returns the content that would be written for it.
//
// Returns an error only if the file cannot be read.
func (o *Obfuscator) ObfuscateFile(filePath string) (string, error) {
	result, err := obfuscator.ProcessFile(filePath, o.Context)
	if err != nil {
		return "", fmt.Errorf("failed to obfuscate file %s: %w", filePath, err)
	}
	return result, nil
}

// ObfuscateFileToFile obfuscates a file and writes the result to another file.
//
// Returns an error if obfuscation or file operations fail.
func (o *Obfuscator) ObfuscateFileToFile(inputPath, outputPath string) error {
	result, err := o.ObfuscateFile(inputPath)
	if err != nil {
		return err
	}

	outputDir := filepath.Dir(outputPath)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
	}
	if err := os.WriteFile(outputPath, []byte(result), 0644); err != nil {
		return fmt.Errorf("failed to write to output file %s: %w", outputPath, err)
	}
	return nil
}

// Build runs the complete pipeline: it rescans the source, recreates the
// target directory, writes every obfuscated file and archives the target.
// The Context is refreshed with the newly scanned registry.
func (o *Obfuscator) Build() (*mirror.Result, error) {
	builder, err := mirror.NewBuilder(o.Config)
	if err != nil {
		return nil, err
	}
	res, err := builder.Run()
	if err != nil {
		return nil, err
	}

	// Keep single-file calls consistent with what was just archived.
	ctx, err := obfuscator.NewObfuscationContext(o.Config, res.Registry)
	if err != nil {
		return nil, fmt.Errorf("failed to refresh obfuscation context: %w", err)
	}
	o.Context = ctx
	return res, nil
}

// Verify compares the target directory with the manifest written by a
// Build run with manifest enabled. An empty result means they match.
func (o *Obfuscator) Verify() ([]string, error) {
	if err := o.Config.Resolve(); err != nil {
		return nil, err
	}
	return mirror.VerifyManifest(o.Config.TargetDirectory, mirror.ManifestPath(o.Config.ArchivePath))
}

// Registry returns the assets currently inlined by ObfuscateText and ObfuscateFile.
func (o *Obfuscator) Registry() *assets.Registry {
	return o.Context.Registry
}

// Reveal decodes obfuscated content back to the original bytes and reports
// which template wrapped it.
func Reveal(content string) (obfuscator.Class, []byte, error) {
	return obfuscator.Reveal(content)
}

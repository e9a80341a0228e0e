// Package mirror writes the obfuscated copy of a source tree and packages it.
//
// A run is strictly sequential: the asset registry is built first, then the
// target directory is recreated, every remaining file is obfuscated into it,
// and finally the whole target is archived.
package mirror

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/Patrickazonzo/findgreetings/internal/assets"
	"github.com/Patrickazonzo/findgreetings/internal/config"
	"github.com/Patrickazonzo/findgreetings/internal/obfuscator"
)

// ErrUnsafeTarget is returned when the target directory could not be removed safely.
var ErrUnsafeTarget = errors.New("refusing to clean potentially dangerous path")

// Stats counts what a mirror pass did.
type Stats struct {
	Directories   int // directories created under the target
	Files         int // obfuscated files written
	BinaryFiles   int // files written with the binary fallback template
	AssetsInlined int // registry size; these files are not written
}

// Result is returned by Builder.Run.
type Result struct {
	ArchivePath     string
	TargetDirectory string
	ManifestPath    string // empty unless a manifest was requested
	Registry        *assets.Registry
	Stats           Stats
}

// Builder runs the whole pipeline for one resolved configuration.
type Builder struct {
	cfg *config.Config
}

// NewBuilder resolves and validates cfg and returns a Builder for it.
func NewBuilder(cfg *config.Config) (*Builder, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration not loaded")
	}
	if err := cfg.Resolve(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Builder{cfg: cfg}, nil
}

// Config returns the resolved configuration.
func (b *Builder) Config() *config.Config {
	return b.cfg
}

func (b *Builder) info(format string, args ...interface{}) {
	if !b.cfg.Silent {
		config.PrintInfo(format, args...)
	}
}

func (b *Builder) debug(format string, args ...interface{}) {
	if !b.cfg.Silent && b.cfg.DebugMode {
		config.PrintInfo(format, args...)
	}
}

// BuildRegistry scans the source tree for inlineable assets.
func (b *Builder) BuildRegistry() (*assets.Registry, error) {
	b.info("Info: Scanning %s for assets...\n", b.cfg.SourceDirectory)
	reg, err := assets.Build(b.cfg.SourceDirectory, assets.BuildOptions{
		IgnoreDirs:       b.cfg.IgnoreDirs,
		SelfPaths:        b.cfg.SelfPaths,
		BinaryExtensions: b.cfg.Extensions.Binary,
		Debug:            b.cfg.DebugMode && !b.cfg.Silent,
	})
	if err != nil {
		return nil, err
	}
	b.info("Info: Registered %d asset(s) for inlining.\n", reg.Len())
	return reg, nil
}

// Run executes registry build, target preparation, mirroring and archiving in order.
func (b *Builder) Run() (*Result, error) {
	reg, err := b.BuildRegistry()
	if err != nil {
		return nil, err
	}

	octx, err := obfuscator.NewObfuscationContext(b.cfg, reg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize obfuscation context: %w", err)
	}

	if err := b.PrepareTarget(); err != nil {
		return nil, err
	}

	stats, err := b.Mirror(octx)
	if err != nil {
		return nil, err
	}

	if err := WriteArchive(b.cfg.TargetDirectory, b.cfg.ArchivePath); err != nil {
		return nil, err
	}
	b.info("Info: Wrote archive %s\n", b.cfg.ArchivePath)

	res := &Result{
		ArchivePath:     b.cfg.ArchivePath,
		TargetDirectory: b.cfg.TargetDirectory,
		Registry:        reg,
		Stats:           stats,
	}

	if b.cfg.Manifest {
		manifestPath := ManifestPath(b.cfg.ArchivePath)
		if err := WriteManifest(b.cfg.TargetDirectory, manifestPath); err != nil {
			return nil, err
		}
		res.ManifestPath = manifestPath
		b.info("Info: Wrote manifest %s\n", manifestPath)
	}
	return res, nil
}

// PrepareTarget removes any previous output and recreates an empty target directory.
func (b *Builder) PrepareTarget() error {
	targetPath := b.cfg.TargetDirectory
	if targetPath == "" {
		return fmt.Errorf("cannot clean: target directory is not specified")
	}

	// Never remove the filesystem root or a bare relative dot path.
	isRoot := targetPath == filepath.VolumeName(targetPath)+"\\"
	if runtime.GOOS != "windows" {
		isRoot = targetPath == "/"
	}
	if isRoot || targetPath == "." || targetPath == ".." {
		return fmt.Errorf("%w: %s", ErrUnsafeTarget, targetPath)
	}
	// Removing an ancestor of the source would delete the input.
	if rel, err := filepath.Rel(targetPath, b.cfg.SourceDirectory); err == nil && !isOutside(rel) {
		return fmt.Errorf("%w: %s contains the source directory", ErrUnsafeTarget, targetPath)
	}

	if _, err := os.Stat(targetPath); err == nil {
		b.info("Info: Cleaning target directory: %s\n", targetPath)
		if err := os.RemoveAll(targetPath); err != nil {
			return fmt.Errorf("failed to clean target directory %s: %w", targetPath, err)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("error checking target directory %s: %w", targetPath, err)
	}

	if err := os.MkdirAll(targetPath, 0755); err != nil {
		return fmt.Errorf("failed to create target directory %s: %w", targetPath, err)
	}
	return nil
}

// Mirror walks the source tree and writes the obfuscated copy of every file
// that is not an inlined asset. Every surviving directory is recreated, even
// when it ends up empty.
func (b *Builder) Mirror(octx *obfuscator.ObfuscationContext) (Stats, error) {
	stats := Stats{AssetsInlined: octx.Registry.Len()}
	source := b.cfg.SourceDirectory
	target := b.cfg.TargetDirectory

	err := assets.Walk(source, b.cfg.IgnoreDirs, b.cfg.SelfPaths, func(relPath string, d fs.DirEntry) error {
		targetEntryPath := filepath.Join(target, filepath.FromSlash(relPath))

		if d.IsDir() {
			b.debug("Ensuring dir: %s\n", targetEntryPath)
			if err := os.MkdirAll(targetEntryPath, 0755); err != nil {
				return fmt.Errorf("error creating directory %q: %w", targetEntryPath, err)
			}
			stats.Directories++
			return nil
		}

		if octx.Registry.Contains(relPath) {
			b.debug("Inlined asset, not emitted: %s\n", relPath)
			return nil
		}

		data, err := assets.ReadFile(source, relPath)
		if err != nil {
			return err
		}
		res := octx.ObfuscateBytes(relPath, data)

		if err := os.MkdirAll(filepath.Dir(targetEntryPath), 0755); err != nil {
			return fmt.Errorf("error creating directory for file %s: %w", targetEntryPath, err)
		}
		if err := os.WriteFile(targetEntryPath, []byte(res.Content), 0644); err != nil {
			return fmt.Errorf("error writing output file %s: %w", targetEntryPath, err)
		}

		stats.Files++
		if res.Class == obfuscator.ClassBinary {
			stats.BinaryFiles++
		}
		b.debug("Obfuscated (%s): %s\n", res.Class, relPath)
		return nil
	})
	if err != nil {
		return stats, fmt.Errorf("error during directory walk of %s: %w", source, err)
	}

	b.info("Info: Wrote %d file(s) (%d binary) into %s; %d asset(s) inlined.\n",
		stats.Files, stats.BinaryFiles, target, stats.AssetsInlined)
	return stats, nil
}

func isOutside(rel string) bool {
	return rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Default names for the generated artifacts. Both live next to the source root.
const (
	DefaultTargetName           = "findgreetings_obfuscated"
	DefaultArchiveName          = "findgreetings-obfuscated.zip"
	DefaultMediaBasePlaceholder = "${MEDIA_BASE}"
	DefaultConfigFile           = "config.yaml"

	// EnvPrefix is prepended to upper-cased config keys for environment overrides,
	// e.g. FINDGREETINGS_REPLACE_MODE=longest.
	EnvPrefix = "FINDGREETINGS"
)

// Replace modes understood by the reference rewriter.
const (
	ReplaceModeSequential = "sequential" // registry order, naive literal replacement
	ReplaceModeLongest    = "longest"    // single pass, longest candidate wins
)

// --- Nested Configuration Structs ---

// ExtensionsConfig groups file extensions by how their content is treated.
// Extensions are matched case-insensitively and stored with a leading dot.
type ExtensionsConfig struct {
	Script     []string `yaml:"script" mapstructure:"script"`         // eval-via-decode shim
	Markup     []string `yaml:"markup" mapstructure:"markup"`         // decode-and-write document
	Stylesheet []string `yaml:"stylesheet" mapstructure:"stylesheet"` // @import data URI
	Text       []string `yaml:"text" mapstructure:"text"`             // "# base64:" marker (documented set; any decodable file falls here)
	Binary     []string `yaml:"binary" mapstructure:"binary"`         // inlined as data URIs, never emitted
}

// Config holds all configuration settings for the obfuscator.
// Struct tags control how YAML and Viper map config file keys and environment variables.
type Config struct {
	// Input/Output settings
	SourceDirectory string `yaml:"source_directory" mapstructure:"source_directory"`
	TargetDirectory string `yaml:"target_directory" mapstructure:"target_directory"`
	ArchivePath     string `yaml:"archive_path" mapstructure:"archive_path"`

	// File Handling
	IgnoreDirs []string         `yaml:"ignore_dirs" mapstructure:"ignore_dirs"` // Directory names pruned at every level
	SelfPaths  []string         `yaml:"self_paths" mapstructure:"self_paths"`   // Tool files never scanned (relative to source)
	Extensions ExtensionsConfig `yaml:"extensions" mapstructure:"extensions"`

	// Rewriting
	MediaBasePlaceholder string `yaml:"media_base_placeholder" mapstructure:"media_base_placeholder"`
	ReplaceMode          string `yaml:"replace_mode" mapstructure:"replace_mode"`
	NormalizeNewlines    bool   `yaml:"normalize_newlines" mapstructure:"normalize_newlines"` // CRLF and CR become LF before encoding text

	// Packaging
	Manifest bool `yaml:"manifest" mapstructure:"manifest"` // Write a digest manifest next to the archive

	// General behavior
	Silent    bool `yaml:"silent" mapstructure:"silent"`         // Suppress informational messages
	DebugMode bool `yaml:"debug_mode" mapstructure:"debug_mode"` // Enable verbose debug logging
}

var (
	// Testing controls whether output is suppressed for testing purposes
	Testing bool
)

// PrintInfo prints informational output unless Testing mode is active.
func PrintInfo(format string, args ...interface{}) {
	if !Testing {
		fmt.Printf(format, args...)
	}
}

// DefaultConfig returns a configuration with default settings.
func DefaultConfig() *Config {
	return &Config{
		IgnoreDirs: []string{".git", "node_modules", "dist", "build", DefaultTargetName},
		SelfPaths:  []string{},
		Extensions: ExtensionsConfig{
			Script:     []string{".js"},
			Markup:     []string{".html", ".htm"},
			Stylesheet: []string{".css"},
			Text:       []string{".md", ".txt", ".json", ".csv", ".tsv", ".xml", ".svg", ".yml", ".yaml", ".toml"},
			Binary: []string{
				".png", ".jpg", ".jpeg", ".gif", ".bmp", ".webp",
				".mp3", ".wav", ".ogg", ".opus",
				".mp4", ".mov", ".avi",
				".zip", ".gz",
			},
		},
		MediaBasePlaceholder: DefaultMediaBasePlaceholder,
		ReplaceMode:          ReplaceModeSequential,
		NormalizeNewlines:    true,
	}
}

// LoadConfig reads configuration from file and environment variables,
// then returns a filled Config struct. Command-line flags are applied by the caller.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	explicit := configPath != ""
	if !explicit {
		configPath = DefaultConfigFile
	}

	if _, err := os.Stat(configPath); err == nil {
		yamlFile, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configPath, err)
		}
		if err := yaml.Unmarshal(yamlFile, cfg); err != nil {
			return nil, fmt.Errorf("error unmarshalling config file %s: %w", configPath, err)
		}
		if !cfg.Silent {
			PrintInfo("Info: Loaded configuration from %s\n", configPath)
		}
	} else if os.IsNotExist(err) {
		if explicit {
			return nil, fmt.Errorf("specified config file not found: %s", configPath)
		}
	} else {
		return nil, fmt.Errorf("error checking config file %s: %w", configPath, err)
	}

	applyEnvOverrides(cfg, newEnvViper())
	cfg.Extensions.normalize()
	return cfg, nil
}

// SaveConfig saves the default configuration to a file.
func SaveConfig(configPath string) error {
	cfg := DefaultConfig()
	yamlData, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshalling default config: %w", err)
	}
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating directory for config file %s: %w", configPath, err)
	}
	if err := os.WriteFile(configPath, yamlData, 0644); err != nil {
		return fmt.Errorf("error writing config file %s: %w", configPath, err)
	}
	PrintInfo("Info: Saved default configuration to %s\n", configPath)
	return nil
}

// envKeys lists the scalar and list keys that may be overridden from the environment.
var envKeys = []string{
	"source_directory",
	"target_directory",
	"archive_path",
	"ignore_dirs",
	"self_paths",
	"media_base_placeholder",
	"replace_mode",
	"normalize_newlines",
	"manifest",
	"silent",
	"debug_mode",
}

func newEnvViper() *viper.Viper {
	v := viper.New()
	for _, key := range envKeys {
		bindEnv(v, key)
	}
	return v
}

// Helper to explicitly bind environment variables, handling potential key mismatches
func bindEnv(v *viper.Viper, key string) {
	envKey := strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
	_ = v.BindEnv(key, EnvPrefix+"_"+envKey)
}

// applyEnvOverrides copies every bound key that is present in the environment.
// List values are whitespace separated.
func applyEnvOverrides(cfg *Config, v *viper.Viper) {
	if v.IsSet("source_directory") {
		cfg.SourceDirectory = v.GetString("source_directory")
	}
	if v.IsSet("target_directory") {
		cfg.TargetDirectory = v.GetString("target_directory")
	}
	if v.IsSet("archive_path") {
		cfg.ArchivePath = v.GetString("archive_path")
	}
	if v.IsSet("ignore_dirs") {
		cfg.IgnoreDirs = v.GetStringSlice("ignore_dirs")
	}
	if v.IsSet("self_paths") {
		cfg.SelfPaths = v.GetStringSlice("self_paths")
	}
	if v.IsSet("media_base_placeholder") {
		cfg.MediaBasePlaceholder = v.GetString("media_base_placeholder")
	}
	if v.IsSet("replace_mode") {
		cfg.ReplaceMode = v.GetString("replace_mode")
	}
	if v.IsSet("normalize_newlines") {
		cfg.NormalizeNewlines = v.GetBool("normalize_newlines")
	}
	if v.IsSet("manifest") {
		cfg.Manifest = v.GetBool("manifest")
	}
	if v.IsSet("silent") {
		cfg.Silent = v.GetBool("silent")
	}
	if v.IsSet("debug_mode") {
		cfg.DebugMode = v.GetBool("debug_mode")
	}
}

// Resolve fills in derived paths and makes every path absolute.
// The target directory and archive default to siblings of the source root.
func (c *Config) Resolve() error {
	if c.SourceDirectory == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("error determining working directory: %w", err)
		}
		c.SourceDirectory = wd
	}
	source, err := filepath.Abs(c.SourceDirectory)
	if err != nil {
		return fmt.Errorf("error resolving source directory %s: %w", c.SourceDirectory, err)
	}
	c.SourceDirectory = source

	parent := filepath.Dir(source)
	if c.TargetDirectory == "" {
		c.TargetDirectory = filepath.Join(parent, DefaultTargetName)
	}
	if c.TargetDirectory, err = filepath.Abs(c.TargetDirectory); err != nil {
		return fmt.Errorf("error resolving target directory: %w", err)
	}
	if c.ArchivePath == "" {
		c.ArchivePath = filepath.Join(parent, DefaultArchiveName)
	}
	if c.ArchivePath, err = filepath.Abs(c.ArchivePath); err != nil {
		return fmt.Errorf("error resolving archive path: %w", err)
	}

	// The running binary counts as the tool's own file when it sits inside the tree.
	if exe, err := os.Executable(); err == nil {
		if rel, ok := within(source, exe); ok {
			c.SelfPaths = appendUnique(c.SelfPaths, rel)
		}
	}
	for i, p := range c.SelfPaths {
		c.SelfPaths[i] = filepath.ToSlash(filepath.Clean(p))
	}

	c.Extensions.normalize()
	return nil
}

// Validate reports configuration values the pipeline cannot work with.
// Call it after Resolve.
func (c *Config) Validate() error {
	switch c.ReplaceMode {
	case ReplaceModeSequential, ReplaceModeLongest:
	default:
		return fmt.Errorf("invalid replace mode %q (want %q or %q)", c.ReplaceMode, ReplaceModeSequential, ReplaceModeLongest)
	}
	if len(c.Extensions.Binary) == 0 {
		return fmt.Errorf("no binary asset extensions configured")
	}
	if c.TargetDirectory == c.SourceDirectory {
		return fmt.Errorf("target directory must differ from source directory %s", c.SourceDirectory)
	}
	if c.ArchivePath == c.SourceDirectory {
		return fmt.Errorf("archive path must differ from source directory %s", c.SourceDirectory)
	}
	// A target nested inside the source must be pruned by name, otherwise the walk would descend into its own output.
	if _, inside := within(c.SourceDirectory, c.TargetDirectory); inside {
		name := filepath.Base(c.TargetDirectory)
		if !c.IsIgnoredDir(name) {
			return fmt.Errorf("target directory %s is inside the source tree but %q is not an ignored directory name", c.TargetDirectory, name)
		}
	}
	// Same for the archive and the manifest beside it: a stale copy must never be scanned.
	if rel, inside := within(c.SourceDirectory, c.ArchivePath); inside && !c.underIgnoredDir(rel) {
		return fmt.Errorf("archive path %s is inside the source tree but not under an ignored directory", c.ArchivePath)
	}
	return nil
}

// underIgnoredDir reports whether any parent directory of the slash path rel is ignored.
func (c *Config) underIgnoredDir(rel string) bool {
	dirs := strings.Split(rel, "/")
	for _, d := range dirs[:len(dirs)-1] {
		if c.IsIgnoredDir(d) {
			return true
		}
	}
	return false
}

// IsIgnoredDir reports whether a directory with this base name is pruned from every walk.
func (c *Config) IsIgnoredDir(name string) bool {
	for _, d := range c.IgnoreDirs {
		if d == name {
			return true
		}
	}
	return false
}

func (e *ExtensionsConfig) normalize() {
	e.Script = normalizeExts(e.Script)
	e.Markup = normalizeExts(e.Markup)
	e.Stylesheet = normalizeExts(e.Stylesheet)
	e.Text = normalizeExts(e.Text)
	e.Binary = normalizeExts(e.Binary)
}

// normalizeExts lower-cases extensions and makes sure each carries a leading dot.
func normalizeExts(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		out = append(out, ext)
	}
	return out
}

// within returns path relative to root in slash form when path lies strictly inside root.
func within(root, path string) (string, bool) {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}

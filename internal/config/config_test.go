package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	Testing = true
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, ReplaceModeSequential, cfg.ReplaceMode)
	assert.Equal(t, DefaultMediaBasePlaceholder, cfg.MediaBasePlaceholder)
	assert.ElementsMatch(t, []string{".git", "node_modules", "dist", "build", DefaultTargetName}, cfg.IgnoreDirs)
	assert.Contains(t, cfg.Extensions.Binary, ".png")
	assert.Contains(t, cfg.Extensions.Binary, ".gz")
	assert.Equal(t, []string{".js"}, cfg.Extensions.Script)
	assert.Equal(t, []string{".html", ".htm"}, cfg.Extensions.Markup)
	assert.Equal(t, []string{".css"}, cfg.Extensions.Stylesheet)
}

func TestLoadConfigMissingDefaultFile(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Extensions, cfg.Extensions)
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestLoadConfigFromFile(t *testing.T) {
	content := `
silent: true
replace_mode: longest
media_base_placeholder: "{{MEDIA}}"
ignore_dirs: [".git", "vendor"]
extensions:
  script: ["JS", ".mjs"]
  binary: [".png"]
`
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.True(t, cfg.Silent)
	assert.Equal(t, ReplaceModeLongest, cfg.ReplaceMode)
	assert.Equal(t, "{{MEDIA}}", cfg.MediaBasePlaceholder)
	assert.Equal(t, []string{".git", "vendor"}, cfg.IgnoreDirs)
	assert.Equal(t, []string{".js", ".mjs"}, cfg.Extensions.Script, "extensions are normalized")
	assert.Equal(t, []string{".png"}, cfg.Extensions.Binary)
	// Keys absent from the file keep their defaults.
	assert.Equal(t, []string{".css"}, cfg.Extensions.Stylesheet)
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ignore_dirs: [unterminated"), 0644))

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshalling")
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("FINDGREETINGS_REPLACE_MODE", "longest")
	t.Setenv("FINDGREETINGS_MANIFEST", "true")
	t.Setenv("FINDGREETINGS_IGNORE_DIRS", ".git out")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, ReplaceModeLongest, cfg.ReplaceMode)
	assert.True(t, cfg.Manifest)
	assert.Equal(t, []string{".git", "out"}, cfg.IgnoreDirs)
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, SaveConfig(path))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestResolveDefaults(t *testing.T) {
	src := filepath.Join(t.TempDir(), "site")
	require.NoError(t, os.Mkdir(src, 0755))

	cfg := DefaultConfig()
	cfg.SourceDirectory = src
	require.NoError(t, cfg.Resolve())

	assert.Equal(t, filepath.Join(filepath.Dir(src), DefaultTargetName), cfg.TargetDirectory)
	assert.Equal(t, filepath.Join(filepath.Dir(src), DefaultArchiveName), cfg.ArchivePath)
	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	src := t.TempDir()

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{
			name:    "unknown replace mode",
			mutate:  func(c *Config) { c.ReplaceMode = "regex" },
			wantErr: "invalid replace mode",
		},
		{
			name:    "no binary extensions",
			mutate:  func(c *Config) { c.Extensions.Binary = nil },
			wantErr: "no binary asset extensions",
		},
		{
			name:    "target equals source",
			mutate:  func(c *Config) { c.TargetDirectory = src },
			wantErr: "target directory must differ",
		},
		{
			name:    "target nested but not ignored",
			mutate:  func(c *Config) { c.TargetDirectory = filepath.Join(src, "out") },
			wantErr: "not an ignored directory name",
		},
		{
			name:   "target nested and ignored",
			mutate: func(c *Config) { c.TargetDirectory = filepath.Join(src, DefaultTargetName) },
		},
		{
			name:    "archive at source top level",
			mutate:  func(c *Config) { c.ArchivePath = filepath.Join(src, DefaultArchiveName) },
			wantErr: "archive path",
		},
		{
			name:    "archive nested but not ignored",
			mutate:  func(c *Config) { c.ArchivePath = filepath.Join(src, "release", "site.zip") },
			wantErr: "not under an ignored directory",
		},
		{
			name:   "archive under ignored directory",
			mutate: func(c *Config) { c.ArchivePath = filepath.Join(src, "dist", "nested", "site.zip") },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.SourceDirectory = src
			require.NoError(t, cfg.Resolve())
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

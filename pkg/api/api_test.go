package api

import (
	"bytes"
	"encoding/base64"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Patrickazonzo/findgreetings/internal/config"
	"github.com/Patrickazonzo/findgreetings/internal/obfuscator"
)

// createTestTree lays out <tmp>/site with a script, a page and one image.
func createTestTree(t *testing.T) string {
	t.Helper()
	source := filepath.Join(t.TempDir(), "site")
	files := map[string]string{
		"app.js":          `const logo = "./images/logo.png";`,
		"index.html":      `<img src="images/logo.png">`,
		"images/logo.png": "\x89PNG",
	}
	for rel, content := range files {
		full := filepath.Join(source, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			t.Fatalf("Failed to create directory for %s: %v", rel, err)
		}
		if err := os.WriteFile(full, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", rel, err)
		}
	}
	return source
}

func TestNewObfuscator(t *testing.T) {
	config.Testing = true
	defer func() { config.Testing = false }()

	// Default empty options use the default config and an empty registry
	obf, err := NewObfuscator(Options{})
	if err != nil {
		t.Fatalf("Expected default config to be used, got error: %v", err)
	}
	if obf.Registry().Len() != 0 {
		t.Errorf("Expected empty registry without a source directory, got %d entries", obf.Registry().Len())
	}

	configContent := `
silent: true
replace_mode: longest
extensions:
  script: [".mjs", "JS"]
`
	configPath := filepath.Join(t.TempDir(), "test-config.yaml")
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write test config file: %v", err)
	}

	obf, err = NewObfuscator(Options{ConfigPath: configPath})
	if err != nil {
		t.Fatalf("NewObfuscator with valid config failed: %v", err)
	}
	if obf.Config.ReplaceMode != config.ReplaceModeLongest {
		t.Errorf("Expected replace mode %q, got %q", config.ReplaceModeLongest, obf.Config.ReplaceMode)
	}
	if got := obf.Config.Extensions.Script; len(got) != 2 || got[1] != ".js" {
		t.Errorf("Expected normalized script extensions, got %v", got)
	}
	if obf.Context == nil {
		t.Errorf("Expected non-nil Context in Obfuscator, got nil")
	}

	if _, err := NewObfuscator(Options{ConfigPath: filepath.Join(t.TempDir(), "missing.yaml")}); err == nil {
		t.Errorf("Expected error for missing explicit config file")
	}
}

func TestObfuscateText(t *testing.T) {
	config.Testing = true
	defer func() { config.Testing = false }()

	source := createTestTree(t)
	obf, err := NewObfuscator(Options{SourceDirectory: source, Silent: true})
	if err != nil {
		t.Fatalf("NewObfuscator failed: %v", err)
	}
	if !obf.Registry().Contains("images/logo.png") {
		t.Fatalf("Expected images/logo.png to be registered")
	}

	result := obf.ObfuscateText("main.js", `load("${MEDIA_BASE}logo.png")`)
	if !strings.HasPrefix(result, `(()=>{eval(atob("`) {
		t.Fatalf("Expected script template, got %q", result)
	}

	class, payload, err := Reveal(result)
	if err != nil {
		t.Fatalf("Reveal failed: %v", err)
	}
	if class != obfuscator.ClassScript {
		t.Errorf("Expected script class, got %s", class)
	}
	want := `load("data:image/png;base64,` + base64.StdEncoding.EncodeToString([]byte("\x89PNG")) + `")`
	if string(payload) != want {
		t.Errorf("Expected payload %q, got %q", want, payload)
	}
}

func TestObfuscateFileToFile(t *testing.T) {
	config.Testing = true
	defer func() { config.Testing = false }()

	source := createTestTree(t)
	obf, err := NewObfuscator(Options{SourceDirectory: source, Silent: true})
	if err != nil {
		t.Fatalf("NewObfuscator failed: %v", err)
	}

	outputPath := filepath.Join(t.TempDir(), "nested", "index.html")
	if err := obf.ObfuscateFileToFile(filepath.Join(source, "index.html"), outputPath); err != nil {
		t.Fatalf("ObfuscateFileToFile failed: %v", err)
	}
	data, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("Failed to read output file: %v", err)
	}
	class, payload, err := Reveal(string(data))
	if err != nil {
		t.Fatalf("Reveal failed: %v", err)
	}
	if class != obfuscator.ClassMarkup {
		t.Errorf("Expected markup class, got %s", class)
	}
	if strings.Contains(string(payload), "images/logo.png") {
		t.Errorf("Expected asset reference to be inlined, got %q", payload)
	}

	_, err = obf.ObfuscateFile(filepath.Join(source, "missing.js"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected not-exist error for missing file, got %v", err)
	}
}

func TestBuild(t *testing.T) {
	config.Testing = true
	defer func() { config.Testing = false }()

	source := createTestTree(t)
	work := filepath.Dir(source)
	obf, err := NewObfuscator(Options{
		Silent:          true,
		SourceDirectory: source,
		TargetDirectory: filepath.Join(work, "out"),
		ArchivePath:     filepath.Join(work, "dist", "site.zip"),
	})
	if err != nil {
		t.Fatalf("NewObfuscator failed: %v", err)
	}
	obf.Config.Manifest = true

	res, err := obf.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if res.ArchivePath != filepath.Join(work, "dist", "site.zip") {
		t.Errorf("Unexpected archive path %s", res.ArchivePath)
	}
	if _, err := os.Stat(res.ArchivePath); err != nil {
		t.Errorf("Expected archive to exist: %v", err)
	}
	if _, err := os.Stat(filepath.Join(res.TargetDirectory, "images", "logo.png")); !os.IsNotExist(err) {
		t.Errorf("Expected inlined asset to be left out of the target, got %v", err)
	}
	if res.Stats.Files != 2 || res.Stats.AssetsInlined != 1 {
		t.Errorf("Unexpected stats %+v", res.Stats)
	}

	problems, err := obf.Verify()
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if len(problems) != 0 {
		t.Errorf("Expected fresh build to verify, got %v", problems)
	}

	if err := os.WriteFile(filepath.Join(res.TargetDirectory, "app.js"), []byte("tampered"), 0644); err != nil {
		t.Fatalf("Failed to tamper with output: %v", err)
	}
	problems, err = obf.Verify()
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if len(problems) != 1 || problems[0] != "modified: app.js" {
		t.Errorf("Expected one modified file, got %v", problems)
	}
}

func TestRevealRejectsPlainText(t *testing.T) {
	if _, _, err := Reveal("just text"); !errors.Is(err, obfuscator.ErrUnrecognizedFormat) {
		t.Errorf("Expected ErrUnrecognizedFormat, got %v", err)
	}
}

func TestPrintInfo(t *testing.T) {
	// Capture stdout
	originalStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	// Test with Testing flag set to false (default)
	config.Testing = false
	PrintInfo("Test output: %s\n", "visible")

	// Read captured output
	w.Close()
	os.Stdout = originalStdout
	var buf bytes.Buffer
	io.Copy(&buf, r)

	// Verify output was printed when Testing=false
	if !strings.Contains(buf.String(), "Test output: visible") {
		t.Error("Expected output to be printed when Testing=false")
	}

	// Reset capture
	r, w, _ = os.Pipe()
	os.Stdout = w

	// Test with Testing flag set to true
	config.Testing = true
	PrintInfo("Test output: %s\n", "invisible")

	// Read captured output
	w.Close()
	os.Stdout = originalStdout
	buf.Reset()
	io.Copy(&buf, r)

	// Verify no output was printed when Testing=true
	if buf.String() != "" {
		t.Errorf("Expected no output when Testing=true, got: %s", buf.String())
	}

	// Reset Testing flag to default value
	config.Testing = false
}

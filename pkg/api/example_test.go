package api_test

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/Patrickazonzo/findgreetings/internal/config"
	"github.com/Patrickazonzo/findgreetings/pkg/api"
)

// Example shows basic usage of the obfuscator library on a single string.
func Example() {
	// Suppress default informational messages for example
	config.Testing = true
	defer func() { config.Testing = false }()

	obf, err := api.NewObfuscator(api.Options{
		Silent: true,
	})
	if err != nil {
		log.Fatalf("Failed to create obfuscator: %v", err)
	}

	fmt.Println(obf.ObfuscateText("notes.txt", "hello"))

	// Output: # base64:aGVsbG8=
}

// ExampleReveal decodes content produced by the obfuscator.
func ExampleReveal() {
	class, payload, err := api.Reveal(`@import url("data:text/css;base64,aDF7fQ==");`)
	if err != nil {
		log.Fatalf("Failed to reveal: %v", err)
	}
	fmt.Printf("%s: %s\n", class, payload)

	// Output: stylesheet: h1{}
}

// ExampleObfuscator_Build demonstrates a complete run over a small tree.
func ExampleObfuscator_Build() {
	config.Testing = true
	defer func() { config.Testing = false }()

	work, err := os.MkdirTemp("", "findgreetings-example-*")
	if err != nil {
		log.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(work)

	source := filepath.Join(work, "site")
	if err := os.MkdirAll(filepath.Join(source, "img"), 0755); err != nil {
		log.Fatalf("Failed to create source: %v", err)
	}
	os.WriteFile(filepath.Join(source, "index.html"), []byte(`<img src="img/a.gif">`), 0644)
	os.WriteFile(filepath.Join(source, "img", "a.gif"), []byte("GIF89a"), 0644)

	obf, err := api.NewObfuscator(api.Options{Silent: true, SourceDirectory: source})
	if err != nil {
		log.Fatalf("Failed to create obfuscator: %v", err)
	}
	res, err := obf.Build()
	if err != nil {
		log.Fatalf("Failed to build: %v", err)
	}

	fmt.Println(filepath.Base(res.ArchivePath))
	fmt.Printf("%d file(s), %d asset(s) inlined\n", res.Stats.Files, res.Stats.AssetsInlined)

	// Output:
	// findgreetings-obfuscated.zip
	// 1 file(s), 1 asset(s) inlined
}

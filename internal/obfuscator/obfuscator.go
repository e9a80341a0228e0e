// Package obfuscator orchestrates per-file obfuscation and holds the shared context.
package obfuscator

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/Patrickazonzo/findgreetings/internal/assets"
	"github.com/Patrickazonzo/findgreetings/internal/config"
	"github.com/Patrickazonzo/findgreetings/internal/rewriter"
)

// Content is the result of a strict text decode: either Text or Binary.
type Content interface {
	isContent()
}

// Text is content that decoded as valid UTF-8.
type Text string

// Binary is content that did not decode as text; it is kept as raw bytes.
type Binary []byte

func (Text) isContent()   {}
func (Binary) isContent() {}

// Decode classifies raw file bytes. It never fails: anything that is not
// valid UTF-8 is Binary. A leading byte-order mark stays part of the text.
func Decode(data []byte) Content {
	if utf8.Valid(data) {
		return Text(data)
	}
	return Binary(data)
}

// normalizeNewlines turns CRLF and lone CR into LF, the way text-mode reads do.
func normalizeNewlines(s string) string {
	if !strings.Contains(s, "\r") {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// Classify picks the text template for a file name by extension, in priority
// order script, markup, stylesheet; everything else is generic text.
func Classify(name string, exts config.ExtensionsConfig) Class {
	switch {
	case assets.HasExt(name, exts.Script):
		return ClassScript
	case assets.HasExt(name, exts.Markup):
		return ClassMarkup
	case assets.HasExt(name, exts.Stylesheet):
		return ClassStylesheet
	}
	return ClassText
}

// ObfuscationContext holds the state shared across every file of a run: the
// configuration, the asset registry and the rewriter built from it.
type ObfuscationContext struct {
	Config   *config.Config
	Registry *assets.Registry
	Rewriter *rewriter.Rewriter
	Silent   bool // Inherited from config for convenience
}

// NewObfuscationContext creates a context over an already-built registry.
// A nil registry behaves like an empty one.
func NewObfuscationContext(cfg *config.Config, reg *assets.Registry) (*ObfuscationContext, error) {
	mode, err := rewriter.ParseMode(cfg.ReplaceMode)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize rewriter: %w", err)
	}
	if reg == nil {
		reg = assets.NewRegistry()
	}
	return &ObfuscationContext{
		Config:   cfg,
		Registry: reg,
		Rewriter: rewriter.New(reg, cfg.MediaBasePlaceholder, mode),
		Silent:   cfg.Silent,
	}, nil
}

// Result describes one obfuscated file.
type Result struct {
	Class   Class
	Content string
	// Text holds the exact text that was encoded (after rewriting); empty for ClassBinary.
	Text string
}

// ObfuscateBytes produces the obfuscated content for a file called name.
// Text goes through reference rewriting and the extension's template; bytes
// that are not valid text are encoded verbatim behind the binary marker.
func (octx *ObfuscationContext) ObfuscateBytes(name string, data []byte) Result {
	content := Decode(data)
	if raw, ok := content.(Binary); ok {
		return Result{Class: ClassBinary, Content: Encode(ClassBinary, raw)}
	}
	return octx.obfuscateText(name, string(content.(Text)))
}

// ObfuscateText rewrites and encodes text as if it were the content of a file called name.
func (octx *ObfuscationContext) ObfuscateText(name, text string) string {
	return octx.obfuscateText(name, text).Content
}

func (octx *ObfuscationContext) obfuscateText(name, text string) Result {
	if octx.Config.NormalizeNewlines {
		text = normalizeNewlines(text)
	}
	text = octx.Rewriter.Rewrite(text)
	class := Classify(name, octx.Config.Extensions)
	return Result{
		Class:   class,
		Content: Encode(class, []byte(text)),
		Text:    text,
	}
}

// ProcessFile reads and obfuscates a single file, returning the content to write.
// Only read errors are returned; a decode failure selects the binary template.
func ProcessFile(filePath string, octx *ObfuscationContext) (string, error) {
	src, err := os.ReadFile(filePath)
	if err != nil {
		// Return error without printing to stderr here, let caller handle reporting.
		return "", fmt.Errorf("error reading file %s: %w", filePath, err)
	}
	res := octx.ObfuscateBytes(filePath, src)
	if octx.Config.DebugMode && !octx.Silent {
		fmt.Printf("Debug: %s rendered with %s template\n", filePath, res.Class)
	}
	return res.Content, nil
}

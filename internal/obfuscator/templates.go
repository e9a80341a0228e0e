package obfuscator

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// Class identifies which output template a file is rendered with.
type Class int

const (
	ClassText       Class = iota // "# base64:<payload>"
	ClassScript                  // eval(atob(...)) shim
	ClassMarkup                  // document.write(atob(...)) page
	ClassStylesheet              // @import of a text/css data URI
	ClassBinary                  // "# base64-bin:<payload>", raw bytes
)

func (c Class) String() string {
	switch c {
	case ClassText:
		return "text"
	case ClassScript:
		return "script"
	case ClassMarkup:
		return "markup"
	case ClassStylesheet:
		return "stylesheet"
	case ClassBinary:
		return "binary"
	}
	return fmt.Sprintf("Class(%d)", int(c))
}

// template is the literal text around the base64 payload.
type template struct {
	class  Class
	prefix string
	suffix string
}

// templates is ordered so that Reveal never matches a shorter prefix first.
var templates = []template{
	{ClassScript, `(()=>{eval(atob("`, `"));})();`},
	{ClassMarkup, `<!doctype html><meta charset="utf-8"><script>document.write(atob("`, `"));</script>`},
	{ClassStylesheet, `@import url("data:text/css;base64,`, `");`},
	{ClassBinary, `# base64-bin:`, ``},
	{ClassText, `# base64:`, ``},
}

var (
	// ErrUnrecognizedFormat is returned by Reveal for content no template produced.
	ErrUnrecognizedFormat = errors.New("content does not match any obfuscation template")
	// ErrInvalidPayload is returned by Reveal when the payload is not valid base64.
	ErrInvalidPayload = errors.New("invalid base64 payload")
)

func lookupTemplate(class Class) template {
	for _, t := range templates {
		if t.class == class {
			return t
		}
	}
	return templates[len(templates)-1]
}

// Render wraps an already-encoded payload in the template for class.
// Unknown classes fall back to the generic text marker.
func Render(class Class, payload string) string {
	t := lookupTemplate(class)
	return t.prefix + payload + t.suffix
}

// Encode base64-encodes data and renders it with the template for class.
func Encode(class Class, data []byte) string {
	return Render(class, base64.StdEncoding.EncodeToString(data))
}

// Reveal is the inverse of Encode: it recognizes the template, extracts the
// payload and decodes it.
func Reveal(content string) (Class, []byte, error) {
	for _, t := range templates {
		if !strings.HasPrefix(content, t.prefix) || !strings.HasSuffix(content[len(t.prefix):], t.suffix) {
			continue
		}
		payload := content[len(t.prefix) : len(content)-len(t.suffix)]
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return t.class, nil, fmt.Errorf("%w (%s template): %v", ErrInvalidPayload, t.class, err)
		}
		return t.class, data, nil
	}
	return ClassText, nil, ErrUnrecognizedFormat
}

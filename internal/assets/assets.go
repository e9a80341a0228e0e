// Package assets builds the registry of binary files that get inlined as data URIs.
package assets

import (
	"encoding/base64"
	"fmt"
	"io/fs"
	"mime"
	"path"
	"path/filepath"
	"strings"
)

// DefaultMIME is used when a file name does not map to a known content type.
const DefaultMIME = "application/octet-stream"

// mimeTypes pins the content types of the default binary asset extensions so
// the generated data URIs do not depend on the host's mime.types file.
var mimeTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".webp": "image/webp",
	".mp3":  "audio/mpeg",
	".wav":  "audio/x-wav",
	".ogg":  "audio/ogg",
	".opus": "audio/opus",
	".mp4":  "video/mp4",
	".mov":  "video/quicktime",
	".avi":  "video/x-msvideo",
	".zip":  "application/zip",
	".gz":   DefaultMIME, // compression suffix, not a content type; see MIMEType for .tar.gz
}

// Entry is a single inlined asset. Entries are immutable once built.
type Entry struct {
	Path    string // root-relative, forward slashes
	MIME    string
	DataURI string // data:<mime>;base64,<payload>
}

// Name returns the final path segment.
func (e Entry) Name() string {
	return path.Base(e.Path)
}

// Registry maps root-relative asset paths to their entries.
// It is read-only after Build returns.
type Registry struct {
	entries []Entry
	index   map[string]int
}

// BuildOptions controls which files Build considers.
type BuildOptions struct {
	IgnoreDirs       []string // directory names pruned at every level
	SelfPaths        []string // root-relative slash paths never scanned
	BinaryExtensions []string // lower-case, with leading dot
	Debug            bool
}

// Build walks root once and registers every file with a binary asset extension.
// Any read failure aborts the build.
func Build(root string, opts BuildOptions) (*Registry, error) {
	reg := &Registry{index: make(map[string]int)}

	err := Walk(root, opts.IgnoreDirs, opts.SelfPaths, func(relPath string, d fs.DirEntry) error {
		if d.IsDir() || !HasExt(relPath, opts.BinaryExtensions) {
			return nil
		}
		data, err := ReadFile(root, relPath)
		if err != nil {
			return err
		}
		mimeType := MIMEType(relPath)
		reg.add(Entry{
			Path:    relPath,
			MIME:    mimeType,
			DataURI: DataURI(mimeType, data),
		})
		if opts.Debug {
			fmt.Printf("Debug: Registered asset %s (%s, %d bytes)\n", relPath, mimeType, len(data))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error building asset registry for %s: %w", root, err)
	}
	return reg, nil
}

// NewRegistry builds a registry from already-encoded entries, keeping their order.
// Later duplicates of a path are ignored.
func NewRegistry(entries ...Entry) *Registry {
	reg := &Registry{index: make(map[string]int, len(entries))}
	for _, e := range entries {
		e.Path = filepath.ToSlash(e.Path)
		if _, dup := reg.index[e.Path]; dup {
			continue
		}
		reg.add(e)
	}
	return reg
}

func (r *Registry) add(e Entry) {
	r.index[e.Path] = len(r.entries)
	r.entries = append(r.entries, e)
}

// Len returns the number of registered assets.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.entries)
}

// Lookup returns the entry registered under relPath.
func (r *Registry) Lookup(relPath string) (Entry, bool) {
	if r == nil {
		return Entry{}, false
	}
	i, ok := r.index[filepath.ToSlash(relPath)]
	if !ok {
		return Entry{}, false
	}
	return r.entries[i], true
}

// Contains reports whether relPath is an inlined asset.
func (r *Registry) Contains(relPath string) bool {
	_, ok := r.Lookup(relPath)
	return ok
}

// Entries returns a copy of all entries in registration (walk) order.
func (r *Registry) Entries() []Entry {
	if r == nil {
		return nil
	}
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Ext returns the lower-cased extension of name. A dot-file such as
// ".gitignore" has no extension.
func Ext(name string) string {
	base := path.Base(filepath.ToSlash(name))
	ext := path.Ext(base)
	if ext == base {
		return ""
	}
	return strings.ToLower(ext)
}

// MIMEType guesses the content type of a file from its name.
func MIMEType(name string) string {
	ext := Ext(name)
	if ext == "" {
		return DefaultMIME
	}
	if ext == ".gz" && Ext(name[:len(name)-len(ext)]) == ".tar" {
		return "application/x-tar"
	}
	if t, ok := mimeTypes[ext]; ok {
		return t
	}
	if t := mime.TypeByExtension(ext); t != "" {
		// Drop parameters such as "; charset=utf-8".
		if i := strings.IndexByte(t, ';'); i >= 0 {
			t = strings.TrimSpace(t[:i])
		}
		return t
	}
	return DefaultMIME
}

// DataURI encodes data as a base64 data URI of the given MIME type.
func DataURI(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// HasExt reports whether name's lower-cased extension is in exts.
func HasExt(name string, exts []string) bool {
	ext := Ext(name)
	if ext == "" {
		return false
	}
	for _, e := range exts {
		if e == ext {
			return true
		}
	}
	return false
}

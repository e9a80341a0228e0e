package mirror

import (
	"bufio"
	_ "crypto/sha256" // registers the canonical digest algorithm
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/opencontainers/go-digest"
)

// ManifestEntry pairs a mirrored file with the digest of its content.
type ManifestEntry struct {
	Path   string
	Digest digest.Digest
}

// ManifestPath returns where the manifest for an archive is written.
func ManifestPath(archivePath string) string {
	return archivePath + ".manifest"
}

// BuildManifest digests every regular file under targetDir, sorted by path.
func BuildManifest(targetDir string) ([]ManifestEntry, error) {
	var entries []ManifestEntry
	err := filepath.WalkDir(targetDir, func(entryPath string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		data, err := os.ReadFile(entryPath)
		if err != nil {
			return err
		}
		relPath, err := filepath.Rel(targetDir, entryPath)
		if err != nil {
			return err
		}
		entries = append(entries, ManifestEntry{
			Path:   filepath.ToSlash(relPath),
			Digest: digest.FromBytes(data),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error building manifest for %s: %w", targetDir, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return entries, nil
}

// WriteManifest writes "<digest>  <path>" lines for every file under targetDir.
func WriteManifest(targetDir, manifestPath string) error {
	entries, err := BuildManifest(targetDir)
	if err != nil {
		return err
	}
	var sb strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&sb, "%s  %s\n", e.Digest, e.Path)
	}
	if err := os.WriteFile(manifestPath, []byte(sb.String()), 0644); err != nil {
		return fmt.Errorf("error writing manifest %s: %w", manifestPath, err)
	}
	return nil
}

// ReadManifest parses a manifest written by WriteManifest.
func ReadManifest(manifestPath string) ([]ManifestEntry, error) {
	f, err := os.Open(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("error opening manifest %s: %w", manifestPath, err)
	}
	defer f.Close()

	var entries []ManifestEntry
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if text == "" {
			continue
		}
		dgst, path, ok := strings.Cut(text, "  ")
		if !ok {
			return nil, fmt.Errorf("manifest %s line %d: missing separator", manifestPath, line)
		}
		d, err := digest.Parse(dgst)
		if err != nil {
			return nil, fmt.Errorf("manifest %s line %d: %w", manifestPath, line, err)
		}
		entries = append(entries, ManifestEntry{Path: path, Digest: d})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading manifest %s: %w", manifestPath, err)
	}
	return entries, nil
}

// VerifyManifest compares targetDir against a manifest and returns one
// description per mismatch; an empty slice means the tree matches.
func VerifyManifest(targetDir, manifestPath string) ([]string, error) {
	want, err := ReadManifest(manifestPath)
	if err != nil {
		return nil, err
	}
	got, err := BuildManifest(targetDir)
	if err != nil {
		return nil, err
	}

	actual := make(map[string]digest.Digest, len(got))
	for _, e := range got {
		actual[e.Path] = e.Digest
	}

	var problems []string
	for _, e := range want {
		d, ok := actual[e.Path]
		switch {
		case !ok:
			problems = append(problems, "missing: "+e.Path)
		case d != e.Digest:
			problems = append(problems, "modified: "+e.Path)
		}
		delete(actual, e.Path)
	}
	extra := make([]string, 0, len(actual))
	for p := range actual {
		extra = append(extra, "unexpected: "+p)
	}
	sort.Strings(extra)
	return append(problems, extra...), nil
}

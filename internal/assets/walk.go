package assets

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// WalkFunc is called for every directory and file below the root that survives
// pruning. relPath is root-relative with forward slashes.
type WalkFunc func(relPath string, d fs.DirEntry) error

// Walk visits root in lexical order, pruning ignored directory names at every
// level and skipping the tool's own files. Symbolic links to directories are
// not descended into; links to files are reported like regular files.
func Walk(root string, ignoreDirs, selfPaths []string, fn WalkFunc) error {
	ignored := toSet(ignoreDirs)
	self := toSet(selfPaths)

	return filepath.WalkDir(root, func(entryPath string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("error accessing path %q: %w", entryPath, err)
		}

		relPath, err := filepath.Rel(root, entryPath)
		if err != nil {
			return fmt.Errorf("error calculating relative path for %q: %w", entryPath, err)
		}
		// Skip root source directory itself
		if relPath == "." {
			return nil
		}
		relPath = filepath.ToSlash(relPath)

		if d.IsDir() {
			if ignored[d.Name()] {
				return filepath.SkipDir
			}
			return fn(relPath, d)
		}

		if self[relPath] {
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			info, err := os.Stat(entryPath)
			if err != nil {
				return fmt.Errorf("error following symlink %q: %w", entryPath, err)
			}
			if info.IsDir() {
				return nil
			}
		}
		return fn(relPath, d)
	})
}

// ReadFile reads a root-relative slash path.
func ReadFile(root, relPath string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(relPath)))
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", relPath, err)
	}
	return data, nil
}

func toSet(list []string) map[string]bool {
	set := make(map[string]bool, len(list))
	for _, s := range list {
		set[s] = true
	}
	return set
}

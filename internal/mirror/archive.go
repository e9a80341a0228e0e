package mirror

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zip"
)

// WriteArchive compresses every file and directory under targetDir into a zip
// at archivePath. Entry names are relative to targetDir with forward slashes;
// directories are stored as "name/" entries. Any existing archive is replaced.
func WriteArchive(targetDir, archivePath string) error {
	if err := os.Remove(archivePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove stale archive %s: %w", archivePath, err)
	}
	if err := os.MkdirAll(filepath.Dir(archivePath), 0755); err != nil {
		return fmt.Errorf("failed to create directory for archive %s: %w", archivePath, err)
	}

	out, err := os.Create(archivePath)
	if err != nil {
		return fmt.Errorf("failed to create archive %s: %w", archivePath, err)
	}

	zw := zip.NewWriter(out)
	walkErr := filepath.WalkDir(targetDir, func(entryPath string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("error accessing path %q: %w", entryPath, err)
		}
		if entryPath == targetDir || entryPath == archivePath {
			return nil
		}
		relPath, err := filepath.Rel(targetDir, entryPath)
		if err != nil {
			return fmt.Errorf("error calculating relative path for %q: %w", entryPath, err)
		}
		return addToArchive(zw, entryPath, filepath.ToSlash(relPath), d)
	})

	closeErr := zw.Close()
	if err := out.Close(); closeErr == nil {
		closeErr = err
	}
	if walkErr != nil {
		return fmt.Errorf("error archiving %s: %w", targetDir, walkErr)
	}
	if closeErr != nil {
		return fmt.Errorf("failed to finish archive %s: %w", archivePath, closeErr)
	}
	return nil
}

func addToArchive(zw *zip.Writer, entryPath, name string, d fs.DirEntry) error {
	info, err := d.Info()
	if err != nil {
		return fmt.Errorf("error getting file info for %s: %w", entryPath, err)
	}
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return fmt.Errorf("error building archive header for %s: %w", entryPath, err)
	}

	if d.IsDir() {
		header.Name = name + "/"
		header.Method = zip.Store
		_, err := zw.CreateHeader(header)
		return err
	}

	header.Name = name
	header.Method = zip.Deflate
	w, err := zw.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("error adding %s to archive: %w", name, err)
	}
	f, err := os.Open(entryPath)
	if err != nil {
		return fmt.Errorf("error opening %s: %w", entryPath, err)
	}
	defer f.Close()
	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("error compressing %s: %w", entryPath, err)
	}
	return nil
}

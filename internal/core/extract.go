package core

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"epubfix/internal/errors"
	"epubfix/internal/security"
)

// Unpack extracts an EPUB archive into destDir for hand editing, so the tree
// can later be fed back through repair.
// Returns the number of files extracted and the total size in bytes.
// Uses fail-closed validation: any single unsafe entry path aborts the entire
// extraction before a file is written.
func Unpack(epubPath, destDir string, limits security.Limits) (int, uint64, error) {
	if _, err := os.Stat(epubPath); err != nil {
		return 0, 0, errors.InputNotFound(epubPath)
	}

	// Pre-scan for zip bomb indicators before touching any content.
	bombCheck, err := security.PreScan(epubPath, limits)
	if err != nil {
		return 0, 0, errors.ArchiveInvalid(epubPath)
	}
	if !bombCheck.IsSafe {
		return 0, 0, errors.ZipBombDetected(bombCheck.Reason)
	}

	r, err := zip.OpenReader(epubPath)
	if err != nil {
		return 0, 0, errors.ArchiveInvalid(epubPath)
	}
	defer r.Close()

	var names []string
	for _, f := range r.File {
		names = append(names, f.Name)
	}
	if err := security.ValidateAllExtractPaths(destDir, names); err != nil {
		return 0, 0, errors.Wrap(errors.CodePathTraversal, "archive has unsafe entry names", err)
	}

	if err := os.MkdirAll(destDir, 0755); err != nil {
		if os.IsPermission(err) {
			return 0, 0, errors.PermissionDenied(destDir, err)
		}
		return 0, 0, fmt.Errorf("failed to create destination directory: %w", err)
	}

	var fileCount int
	var totalSize uint64

	for _, f := range r.File {
		if err := unpackEntry(f, destDir, &fileCount, &totalSize); err != nil {
			return fileCount, totalSize, fmt.Errorf("failed to extract %q: %w", f.Name, err)
		}
	}

	return fileCount, totalSize, nil
}

// unpackEntry extracts a single entry from the archive.
func unpackEntry(f *zip.File, destDir string, fileCount *int, totalSize *uint64) error {
	destPath := filepath.Join(destDir, filepath.FromSlash(f.Name))

	if f.FileInfo().IsDir() {
		if err := os.MkdirAll(destPath, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return fmt.Errorf("failed to create parent directory: %w", err)
	}

	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("failed to open entry: %w", err)
	}
	defer rc.Close()

	outFile, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer outFile.Close()

	written, err := io.Copy(outFile, rc)
	if err != nil {
		return fmt.Errorf("failed to copy data: %w", err)
	}

	*fileCount++
	*totalSize += uint64(written)

	return nil
}

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

// Rebuild writes the input's entries to destPath as a fresh EPUB archive.
//
// The mimetype entry, if present, is written first with the Store method and
// no extra field, as the OCF requires; all other entries follow in the order
// Entries produced (alphabetical), compressed with Deflate.
//
// The archive is staged as a temporary file in destPath's directory and
// renamed into place on success, so the final path never holds a partially
// written file. The temporary file is removed on every error path.
func Rebuild(in Input, destPath string, limits security.Limits) error {
	entries, cleanup, err := in.Entries(limits)
	if err != nil {
		return err
	}
	defer cleanup()

	// Stage in the destination directory so the final rename stays on one
	// filesystem and is atomic.
	destDir := filepath.Dir(destPath)
	tempFile, err := os.CreateTemp(destDir, fmt.Sprintf(".%s.epubfix-tmp-*", filepath.Base(destPath)))
	if err != nil {
		if os.IsPermission(err) {
			return errors.PermissionDenied(destDir, err)
		}
		return errors.WriteFailed(err)
	}
	tempPath := tempFile.Name()

	cleanupTemp := true
	defer func() {
		if cleanupTemp {
			os.Remove(tempPath)
		}
	}()

	if err := writeArchive(tempFile, entries); err != nil {
		tempFile.Close()
		return errors.WriteFailed(err)
	}

	if err := tempFile.Close(); err != nil {
		return errors.WriteFailed(err)
	}

	if err := os.Rename(tempPath, destPath); err != nil {
		return errors.WriteFailed(err)
	}
	cleanupTemp = false

	return nil
}

// writeArchive writes entries to w as a ZIP archive with the mimetype entry
// first and stored.
func writeArchive(w io.Writer, entries []Entry) error {
	zw := zip.NewWriter(w)

	rest := entries
	for i, e := range entries {
		if e.Name != MimetypeName {
			continue
		}
		header := &zip.FileHeader{
			Name:   MimetypeName,
			Method: zip.Store,
		}
		header.SetMode(0644)
		// Extra stays nil: readers sniff the media type at a fixed offset,
		// so nothing may sit between the local header and the content.
		if err := writeEntry(zw, header, e); err != nil {
			return err
		}
		rest = append(append([]Entry{}, entries[:i]...), entries[i+1:]...)
		break
	}

	for _, e := range rest {
		header := &zip.FileHeader{
			Name:   e.Name,
			Method: zip.Deflate,
		}
		header.SetMode(0644)
		if err := writeEntry(zw, header, e); err != nil {
			return err
		}
	}

	return zw.Close()
}

// writeEntry writes a single entry's content under the given header.
func writeEntry(zw *zip.Writer, header *zip.FileHeader, e Entry) error {
	ew, err := zw.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("failed to create entry %q: %w", e.Name, err)
	}

	rc, err := e.Open()
	if err != nil {
		return fmt.Errorf("failed to open entry %q: %w", e.Name, err)
	}
	defer rc.Close()

	if _, err := io.Copy(ew, rc); err != nil {
		return fmt.Errorf("failed to write entry %q: %w", e.Name, err)
	}

	return nil
}

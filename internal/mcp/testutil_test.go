package mcp

import (
	"archive/zip"
	"os"
	"testing"
)

const mimetypeContent = "application/epub+zip"

// writeBrokenEpub creates an EPUB archive with the mimetype entry deflated
// and last, so a repair run actually has something to fix.
func writeBrokenEpub(t *testing.T, path string) {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create epub file: %v", err)
	}
	defer f.Close()

	w := zip.NewWriter(f)
	defer w.Close()

	entries := []struct {
		name    string
		content string
	}{
		{"OEBPS/content.opf", "<package/>"},
		{"META-INF/container.xml", "<container/>"},
		{"mimetype", mimetypeContent},
	}
	for _, e := range entries {
		ew, err := w.Create(e.name)
		if err != nil {
			t.Fatalf("failed to create entry %s: %v", e.name, err)
		}
		if _, err := ew.Write([]byte(e.content)); err != nil {
			t.Fatalf("failed to write entry %s: %v", e.name, err)
		}
	}
}

// setupTestEnvironment sets up a clean test environment with custom data dir.
func setupTestEnvironment(t *testing.T) string {
	t.Helper()

	tempDir := t.TempDir()
	os.Setenv("EPUBFIX_DATA_DIR", tempDir)
	t.Cleanup(func() {
		os.Unsetenv("EPUBFIX_DATA_DIR")
	})

	return tempDir
}

package core

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"testing"
)

// fixtureEntry is one entry for writeFixtureArchive, written in slice order
// with the given method so tests can build both conforming and broken EPUBs.
type fixtureEntry struct {
	name    string
	content string
	method  uint16
}

// writeFixtureArchive writes a zip with exactly the given entries, in order.
func writeFixtureArchive(t *testing.T, path string, entries []fixtureEntry) {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create archive: %v", err)
	}
	defer f.Close()

	w := zip.NewWriter(f)
	for _, e := range entries {
		header := &zip.FileHeader{
			Name:   e.name,
			Method: e.method,
		}
		ew, err := w.CreateHeader(header)
		if err != nil {
			t.Fatalf("failed to create entry %s: %v", e.name, err)
		}
		if _, err := ew.Write([]byte(e.content)); err != nil {
			t.Fatalf("failed to write entry %s: %v", e.name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("failed to close archive: %v", err)
	}
}

// writeBrokenEpub writes an EPUB with the mimetype entry deflated and last,
// the shape this tool exists to fix.
func writeBrokenEpub(t *testing.T, path string) {
	t.Helper()
	writeFixtureArchive(t, path, []fixtureEntry{
		{name: "OEBPS/content.opf", content: "<package/>", method: zip.Deflate},
		{name: "META-INF/container.xml", content: "<container/>", method: zip.Deflate},
		{name: MimetypeName, content: MimetypeContent, method: zip.Deflate},
	})
}

// writeGoodEpub writes a conforming EPUB: mimetype first, stored.
func writeGoodEpub(t *testing.T, path string) {
	t.Helper()
	writeFixtureArchive(t, path, []fixtureEntry{
		{name: MimetypeName, content: MimetypeContent, method: zip.Store},
		{name: "META-INF/container.xml", content: "<container/>", method: zip.Deflate},
		{name: "OEBPS/content.opf", content: "<package/>", method: zip.Deflate},
	})
}

// writeEpubTree writes an extracted EPUB tree under dir.
func writeEpubTree(t *testing.T, dir string, files map[string]string) {
	t.Helper()

	for name, content := range files {
		fullPath := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
			t.Fatalf("failed to create dir for %s: %v", name, err)
		}
		if err := os.WriteFile(fullPath, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
}

// readArchiveEntries opens an archive and returns its file entries in
// central-directory order.
func readArchiveEntries(t *testing.T, path string) []*zip.File {
	t.Helper()

	r, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("failed to open archive %s: %v", path, err)
	}
	t.Cleanup(func() { r.Close() })

	return r.File
}

// readArchiveContents returns a map of entry name to decompressed content.
func readArchiveContents(t *testing.T, path string) map[string]string {
	t.Helper()

	contents := make(map[string]string)
	for _, f := range readArchiveEntries(t, path) {
		if f.FileInfo().IsDir() {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("failed to open entry %s: %v", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("failed to read entry %s: %v", f.Name, err)
		}
		contents[f.Name] = string(data)
	}
	return contents
}

// tempArtifacts returns the names of leftover temp files in dir.
func tempArtifacts(t *testing.T, dir string) []string {
	t.Helper()

	matches, err := filepath.Glob(filepath.Join(dir, ".*epubfix-tmp-*"))
	if err != nil {
		t.Fatalf("glob failed: %v", err)
	}
	return matches
}

package core

import (
	"archive/zip"
	"path/filepath"
	"testing"

	"epubfix/internal/errors"
	"epubfix/internal/security"
)

func TestInspect_GoodArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.epub")
	writeGoodEpub(t, path)

	report, err := Inspect(Input{Path: path, Kind: KindArchive}, security.DefaultLimits())
	if err != nil {
		t.Fatalf("Inspect() error = %v", err)
	}

	if report.NeedsRepair {
		t.Errorf("NeedsRepair = true for a conforming archive; problems: %v", report.Problems)
	}
	if !report.MimetypePresent {
		t.Error("MimetypePresent = false")
	}
	if report.MimetypeValue != MimetypeContent {
		t.Errorf("MimetypeValue = %q, want %q", report.MimetypeValue, MimetypeContent)
	}
	if report.EntryCount != 3 {
		t.Errorf("EntryCount = %d, want 3", report.EntryCount)
	}
	if len(report.Problems) != 0 {
		t.Errorf("Problems = %v, want none", report.Problems)
	}
}

func TestInspect_BrokenArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.epub")
	writeBrokenEpub(t, path)

	report, err := Inspect(Input{Path: path, Kind: KindArchive}, security.DefaultLimits())
	if err != nil {
		t.Fatalf("Inspect() error = %v", err)
	}

	if !report.NeedsRepair {
		t.Error("NeedsRepair = false for a broken archive")
	}
	if !hasProblem(report, "mimetype is not the first entry") {
		t.Errorf("missing position problem; got %v", report.Problems)
	}
	if !hasProblem(report, "mimetype is compressed") {
		t.Errorf("missing compression problem; got %v", report.Problems)
	}
}

func TestInspect_MissingMimetype(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.epub")
	writeFixtureArchive(t, path, []fixtureEntry{
		{name: "OEBPS/content.opf", content: "<package/>", method: zip.Deflate},
	})

	report, err := Inspect(Input{Path: path, Kind: KindArchive}, security.DefaultLimits())
	if err != nil {
		t.Fatalf("Inspect() error = %v", err)
	}

	if report.MimetypePresent {
		t.Error("MimetypePresent = true, want false")
	}
	if !hasProblem(report, "mimetype entry is missing") {
		t.Errorf("missing problem not reported; got %v", report.Problems)
	}
}

func TestInspect_WrongMimetypeValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.epub")
	writeFixtureArchive(t, path, []fixtureEntry{
		{name: MimetypeName, content: "text/plain", method: zip.Store},
		{name: "OEBPS/content.opf", content: "<package/>", method: zip.Deflate},
	})

	report, err := Inspect(Input{Path: path, Kind: KindArchive}, security.DefaultLimits())
	if err != nil {
		t.Fatalf("Inspect() error = %v", err)
	}

	if report.MimetypeValue != "text/plain" {
		t.Errorf("MimetypeValue = %q, want %q", report.MimetypeValue, "text/plain")
	}
	// A wrong value is reported but is not something a rebuild changes.
	if report.NeedsRepair {
		t.Error("NeedsRepair = true for a structurally sound archive")
	}
	if len(report.Problems) == 0 {
		t.Error("wrong mimetype value not reported")
	}
}

func TestInspect_Directory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "book.epub")
	writeEpubTree(t, dir, map[string]string{
		"mimetype":          MimetypeContent,
		"OEBPS/content.opf": "<package/>",
	})

	report, err := Inspect(Input{Path: dir, Kind: KindDir}, security.DefaultLimits())
	if err != nil {
		t.Fatalf("Inspect() error = %v", err)
	}

	if !report.NeedsRepair {
		t.Error("NeedsRepair = false for a directory input")
	}
	if !report.MimetypePresent {
		t.Error("MimetypePresent = false")
	}
	if report.MimetypeValue != MimetypeContent {
		t.Errorf("MimetypeValue = %q, want %q", report.MimetypeValue, MimetypeContent)
	}
	if report.EntryCount != 2 {
		t.Errorf("EntryCount = %d, want 2", report.EntryCount)
	}
}

func TestInspect_DirectoryMissingMimetype(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "book.epub")
	writeEpubTree(t, dir, map[string]string{
		"OEBPS/content.opf": "<package/>",
	})

	report, err := Inspect(Input{Path: dir, Kind: KindDir}, security.DefaultLimits())
	if err != nil {
		t.Fatalf("Inspect() error = %v", err)
	}

	if report.MimetypePresent {
		t.Error("MimetypePresent = true, want false")
	}
	if !hasProblem(report, "mimetype file is missing") {
		t.Errorf("missing problem not reported; got %v", report.Problems)
	}
}

func TestInspect_NotAZip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fake.epub")
	writeEpubTree(t, filepath.Dir(path), map[string]string{"fake.epub": "junk"})

	_, err := Inspect(Input{Path: path, Kind: KindArchive}, security.DefaultLimits())
	if !errors.Is(err, errors.CodeArchiveInvalid) {
		t.Errorf("error code = %q, want %q", errors.Code(err), errors.CodeArchiveInvalid)
	}
}

func hasProblem(r *Report, want string) bool {
	for _, p := range r.Problems {
		if p == want {
			return true
		}
	}
	return false
}

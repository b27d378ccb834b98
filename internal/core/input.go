package core

import (
	"archive/zip"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"epubfix/internal/errors"
	"epubfix/internal/security"
)

// MimetypeName is the archive path of the EPUB media type declaration.
// The OCF requires it to be the first entry, stored without compression.
const MimetypeName = "mimetype"

// MimetypeContent is the value a conforming EPUB declares.
const MimetypeContent = "application/epub+zip"

// Kind distinguishes the two input shapes the tool accepts.
type Kind string

const (
	// KindArchive is an .epub file, itself a ZIP container.
	KindArchive Kind = "archive"
	// KindDir is a directory tree holding an already-extracted EPUB.
	KindDir Kind = "directory"
)

// Input is one item to repair: an .epub archive or an extracted tree.
type Input struct {
	Path string `json:"path"`
	Kind Kind   `json:"kind"`
}

// Entry is a single archive entry: a slash-separated relative path plus a
// way to open its content. Metadata beyond the name is not carried; the
// rebuilt archive normalizes modes and timestamps so output is deterministic.
type Entry struct {
	Name string
	Open func() (io.ReadCloser, error)
}

// NewInput classifies path as an archive or directory input.
func NewInput(path string) (Input, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Input{}, errors.InputNotFound(path)
		}
		if os.IsPermission(err) {
			return Input{}, errors.PermissionDenied(path, err)
		}
		return Input{}, errors.Wrap(errors.CodeInputNotFound, "failed to stat input", err)
	}

	kind := KindArchive
	if info.IsDir() {
		kind = KindDir
	}
	return Input{Path: path, Kind: kind}, nil
}

// OutputName returns the destination file name for this input: its base name
// with an .epub extension.
func (in Input) OutputName() string {
	base := filepath.Base(in.Path)
	ext := filepath.Ext(base)
	if strings.EqualFold(ext, ".epub") {
		return base
	}
	return strings.TrimSuffix(base, ext) + ".epub"
}

// Entries collects the input's file entries, sorted alphabetically by
// archive path. Both input kinds yield the same list for the same content,
// so an archive and its extracted tree repack identically.
//
// The returned cleanup must be called once the entries have been consumed;
// for archive inputs it closes the underlying zip reader.
func (in Input) Entries(limits security.Limits) ([]Entry, func(), error) {
	switch in.Kind {
	case KindDir:
		entries, err := dirEntries(in.Path)
		return entries, func() {}, err
	default:
		return archiveEntries(in.Path, limits)
	}
}

// dirEntries walks a directory tree and returns its regular files as entries.
// Symlinks are skipped; entry names are relative, slash-separated paths.
func dirEntries(root string) ([]Entry, error) {
	var entries []Entry

	err := filepath.Walk(root, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || info.Mode()&os.ModeSymlink != 0 {
			return nil
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		name := filepath.ToSlash(relPath)
		entries = append(entries, Entry{
			Name: name,
			Open: func() (io.ReadCloser, error) {
				return os.Open(path)
			},
		})
		return nil
	})
	if err != nil {
		if os.IsPermission(err) {
			return nil, errors.PermissionDenied(root, err)
		}
		return nil, errors.Wrap(errors.CodeInputNotFound, "failed to walk input directory", err)
	}

	var names []string
	for _, e := range entries {
		names = append(names, e.Name)
	}
	if err := security.ValidateAllEntryNames(names); err != nil {
		return nil, errors.Wrap(errors.CodePathTraversal, "input tree has unsafe file names", err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// archiveEntries opens an .epub archive and returns its file entries.
// The archive is pre-scanned for zip bomb indicators and every entry name is
// validated before anything is read (fail-closed).
func archiveEntries(path string, limits security.Limits) ([]Entry, func(), error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, errors.InputNotFound(path)
		}
		if os.IsPermission(err) {
			return nil, nil, errors.PermissionDenied(path, err)
		}
		return nil, nil, errors.ArchiveInvalid(path)
	}

	cleanup := func() { _ = r.Close() }

	bombCheck := security.PreScanReader(&r.Reader, limits)
	if !bombCheck.IsSafe {
		cleanup()
		return nil, nil, errors.ZipBombDetected(bombCheck.Reason)
	}

	var names []string
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		names = append(names, f.Name)
	}
	if err := security.ValidateAllEntryNames(names); err != nil {
		cleanup()
		return nil, nil, errors.Wrap(errors.CodePathTraversal, "archive has unsafe entry names", err)
	}

	var entries []Entry
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		entries = append(entries, Entry{
			Name: f.Name,
			Open: f.Open,
		})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, cleanup, nil
}

// Discover returns the .epub items directly inside inputDir, sorted by name.
// Both regular files and directories qualify; the scan is not recursive.
func Discover(inputDir string) ([]Input, error) {
	dirEntries, err := os.ReadDir(inputDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.InputNotFound(inputDir)
		}
		if os.IsPermission(err) {
			return nil, errors.PermissionDenied(inputDir, err)
		}
		return nil, errors.Wrap(errors.CodeInputNotFound, "failed to read input directory", err)
	}

	var inputs []Input
	for _, de := range dirEntries {
		if !strings.EqualFold(filepath.Ext(de.Name()), ".epub") {
			continue
		}
		kind := KindArchive
		if de.IsDir() {
			kind = KindDir
		}
		inputs = append(inputs, Input{
			Path: filepath.Join(inputDir, de.Name()),
			Kind: kind,
		})
	}

	// os.ReadDir returns entries sorted by name, so inputs are already ordered.
	return inputs, nil
}

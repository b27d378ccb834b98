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

// maxMimetypeBytes caps how much of a mimetype entry Inspect will read.
// The conforming value is 20 bytes; anything near this cap is garbage.
const maxMimetypeBytes = 256

// Report describes whether an input already satisfies the EPUB packaging
// rule. Problems lists everything observed; NeedsRepair reflects only what a
// rebuild would fix (structure, not the mimetype value itself).
type Report struct {
	Input           string   `json:"input"`
	Kind            Kind     `json:"kind"`
	EntryCount      int      `json:"entry_count"`
	MimetypeValue   string   `json:"mimetype_value,omitempty"`
	Problems        []string `json:"problems,omitempty"`
	MimetypePresent bool     `json:"mimetype_present"`
	NeedsRepair     bool     `json:"needs_repair"`
}

// Inspect examines an input without writing anything.
func Inspect(in Input, limits security.Limits) (*Report, error) {
	if in.Kind == KindDir {
		return inspectDir(in)
	}
	return inspectArchive(in, limits)
}

// inspectDir reports on an extracted tree. A directory always needs repair:
// it is not an archive yet.
func inspectDir(in Input) (*Report, error) {
	report := &Report{
		Input:       in.Path,
		Kind:        KindDir,
		NeedsRepair: true,
		Problems:    []string{"input is an extracted directory, not an archive"},
	}

	entries, _, err := in.Entries(security.Limits{})
	if err != nil {
		return nil, err
	}
	report.EntryCount = len(entries)

	data, err := os.ReadFile(filepath.Join(in.Path, MimetypeName))
	switch {
	case err == nil:
		report.MimetypePresent = true
		report.MimetypeValue = string(data)
		if report.MimetypeValue != MimetypeContent {
			report.Problems = append(report.Problems,
				fmt.Sprintf("mimetype value is %q, expected %q", report.MimetypeValue, MimetypeContent))
		}
	case os.IsNotExist(err):
		report.Problems = append(report.Problems, "mimetype file is missing")
	default:
		return nil, fmt.Errorf("failed to read mimetype file: %w", err)
	}

	return report, nil
}

// inspectArchive reports on an .epub archive.
func inspectArchive(in Input, limits security.Limits) (*Report, error) {
	r, err := zip.OpenReader(in.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.InputNotFound(in.Path)
		}
		return nil, errors.ArchiveInvalid(in.Path)
	}
	defer r.Close()

	bombCheck := security.PreScanReader(&r.Reader, limits)
	if !bombCheck.IsSafe {
		return nil, errors.ZipBombDetected(bombCheck.Reason)
	}

	report := &Report{
		Input: in.Path,
		Kind:  KindArchive,
	}

	var mimetype *zip.File
	for i, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		report.EntryCount++
		if f.Name != MimetypeName {
			continue
		}
		mimetype = f
		report.MimetypePresent = true
		if i != 0 {
			report.Problems = append(report.Problems, "mimetype is not the first entry")
			report.NeedsRepair = true
		}
		if f.Method != zip.Store {
			report.Problems = append(report.Problems, "mimetype is compressed")
			report.NeedsRepair = true
		}
		if len(f.Extra) > 0 {
			report.Problems = append(report.Problems, "mimetype has an extra field")
			report.NeedsRepair = true
		}
	}

	if mimetype == nil {
		report.Problems = append(report.Problems, "mimetype entry is missing")
		return report, nil
	}

	value, err := readEntryCapped(mimetype, maxMimetypeBytes)
	if err != nil {
		return nil, errors.Wrap(errors.CodeArchiveInvalid, "failed to read mimetype entry", err)
	}
	report.MimetypeValue = value
	if value != MimetypeContent {
		report.Problems = append(report.Problems,
			fmt.Sprintf("mimetype value is %q, expected %q", value, MimetypeContent))
	}

	return report, nil
}

// readEntryCapped reads at most limit bytes of a zip entry.
func readEntryCapped(f *zip.File, limit int64) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, limit))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

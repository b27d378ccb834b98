package security

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ValidateExtractPath checks that an entry is safe to extract under the given
// base directory. Returns an error if the resolved target would land outside
// the base directory.
func ValidateExtractPath(base, entryName string) error {
	if err := ValidateEntryName(entryName); err != nil {
		return err
	}

	cleanBase := filepath.Clean(base)
	target := filepath.Join(cleanBase, filepath.FromSlash(entryName))

	// If target escapes base, the relative path starts with "..".
	rel, err := filepath.Rel(cleanBase, target)
	if err != nil {
		return fmt.Errorf("path resolution failed for %q: %w", entryName, err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("path traversal detected: %q resolves outside base directory", entryName)
	}

	return nil
}

// ValidateAllExtractPaths validates every entry name against the base
// directory, returning an error on the first offender. Fail-closed: one bad
// entry aborts the whole extraction before any file is written.
func ValidateAllExtractPaths(base string, names []string) error {
	for _, name := range names {
		if err := ValidateExtractPath(base, name); err != nil {
			return fmt.Errorf("extraction path validation failed: %w", err)
		}
	}
	return nil
}

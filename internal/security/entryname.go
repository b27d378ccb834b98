package security

import (
	"fmt"
	"path"
	"strings"
)

// ValidateEntryName checks that an archive-internal entry name is safe to
// carry into a rebuilt archive. Entry names are slash-separated relative
// paths per the ZIP appnote; anything else is rejected.
//
// Rejects:
// - Empty names
// - Null bytes
// - Control characters (0x00-0x1F, 0x7F)
// - Absolute paths (leading "/" or "\", or a drive letter)
// - ".." components
func ValidateEntryName(name string) error {
	if name == "" {
		return fmt.Errorf("entry name cannot be empty")
	}

	if strings.Contains(name, "\x00") {
		return fmt.Errorf("entry name contains null byte: %q", name)
	}

	for _, r := range name {
		if r < 0x20 || r == 0x7F {
			return fmt.Errorf("entry name contains control character: %q", name)
		}
	}

	if strings.HasPrefix(name, "/") || strings.HasPrefix(name, "\\") {
		return fmt.Errorf("entry name must be relative, got absolute path: %q", name)
	}

	// Windows drive-letter absolute paths ("C:/...") written by broken tools.
	if len(name) >= 2 && name[1] == ':' {
		return fmt.Errorf("entry name must be relative, got drive path: %q", name)
	}

	for _, part := range strings.Split(strings.ReplaceAll(name, "\\", "/"), "/") {
		if part == ".." {
			return fmt.Errorf("entry name contains \"..\" component: %q", name)
		}
	}

	// path.Clean catches remaining oddities like "./../x".
	if strings.HasPrefix(path.Clean(name), "..") {
		return fmt.Errorf("entry name attempts to traverse outside the archive: %q", name)
	}

	return nil
}

// ValidateAllEntryNames validates a slice of entry names, returning an error
// on the first invalid name. Fail-closed: if any name is invalid, the whole
// input is rejected before a single output byte is written.
func ValidateAllEntryNames(names []string) error {
	for _, name := range names {
		if err := ValidateEntryName(name); err != nil {
			return fmt.Errorf("entry validation failed: %w", err)
		}
	}
	return nil
}

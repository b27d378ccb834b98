package core

import (
	"fmt"
	"os"
	"path/filepath"
)

// DataDir returns the base data directory for epubfix.
// It follows the XDG Base Directory Specification:
// - $EPUBFIX_DATA_DIR (full override)
// - $XDG_DATA_HOME/epubfix
// - ~/.local/share/epubfix (fallback)
func DataDir() (string, error) {
	// Check for full override
	if dir := os.Getenv("EPUBFIX_DATA_DIR"); dir != "" {
		return dir, nil
	}

	// Check XDG_DATA_HOME
	if xdgDataHome := os.Getenv("XDG_DATA_HOME"); xdgDataHome != "" {
		return filepath.Join(xdgDataHome, "epubfix"), nil
	}

	// Fallback to ~/.local/share/epubfix
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(home, ".local", "share", "epubfix"), nil
}

// ConfigPath returns the path to config.json in the data directory.
func ConfigPath() (string, error) {
	dataDir, err := DataDir()
	if err != nil {
		return "", fmt.Errorf("failed to get data directory: %w", err)
	}
	return filepath.Join(dataDir, "config.json"), nil
}

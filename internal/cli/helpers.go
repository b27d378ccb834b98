package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"epubfix/internal/core"
	"epubfix/internal/errors"

	"golang.org/x/term"
)

// outputJSON marshals and prints JSON to stdout.
func outputJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// isTerminal checks if the given file descriptor is a TTY.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// getExitCode maps error codes to CLI exit codes.
func getExitCode(err error) int {
	if err == nil {
		return 0
	}

	code := errors.Code(err)
	switch code {
	case errors.CodeInputNotFound:
		return 4 // Input not found
	case errors.CodeZipBombDetected, errors.CodePathTraversal:
		return 5 // Security
	case errors.CodeLocked:
		return 3 // Output directory locked
	case "":
		// Not an epubfix error - could be usage error or a failed batch
		return 1 // General error
	default:
		return 1 // General error
	}
}

// loadConfig loads the configuration from the data directory.
func loadConfig() (*core.Config, error) {
	dataDir, err := core.DataDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get data directory: %w", err)
	}

	// Ensure data directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg, err := core.LoadConfig(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// printError prints an error to stderr with appropriate formatting.
func printError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
}

// confirmPrompt prompts the user for a yes/no confirmation.
// Returns true if user confirms, false otherwise.
func confirmPrompt(message string) bool {
	if !isTerminal(os.Stdin) {
		return false
	}

	fmt.Fprintf(os.Stderr, "%s (y/N): ", message)

	var response string
	if _, err := fmt.Scanln(&response); err != nil {
		return false
	}

	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes"
}

// formatBytes renders a byte count in a human-friendly unit.
func formatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

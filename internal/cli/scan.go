package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"epubfix/internal/core"

	"github.com/spf13/cobra"
)

var scanCmd = &cobra.Command{
	Use:   "scan <input-dir>",
	Short: "Report which EPUBs need repair without writing anything",
	Long: `Examines every .epub file (or extracted .epub directory) found in the
input directory and reports whether it satisfies the EPUB packaging rule:
the mimetype entry must come first and be stored uncompressed.

Nothing is written; use this to preview what a repair run would do.`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

// scanEntry pairs one input with its report or inspection error.
type scanEntry struct {
	Report *core.Report `json:"report,omitempty"`
	Input  string       `json:"input"`
	Error  string       `json:"error,omitempty"`
}

func runScan(cmd *cobra.Command, args []string) error {
	inputDir := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	inputs, err := core.Discover(inputDir)
	if err != nil {
		return err
	}

	var entries []scanEntry
	var failures int
	for _, in := range inputs {
		entry := scanEntry{Input: in.Path}
		report, err := core.Inspect(in, cfg.ToSecurityLimits())
		if err != nil {
			entry.Error = err.Error()
			failures++
		} else {
			entry.Report = report
		}
		entries = append(entries, entry)
	}

	if flagJSON {
		if err := outputJSON(entries); err != nil {
			return err
		}
		return scanError(failures)
	}

	if len(entries) == 0 {
		if !flagQuiet {
			fmt.Println("No .epub files found.")
		}
		return nil
	}

	for _, entry := range entries {
		printScanEntry(entry)
	}

	return scanError(failures)
}

func printScanEntry(entry scanEntry) {
	name := filepath.Base(entry.Input)
	switch {
	case entry.Error != "":
		fmt.Fprintf(os.Stderr, "%s: %s\n", name, entry.Error)
	case entry.Report.NeedsRepair:
		fmt.Printf("%s: needs repair (%s)\n", name, strings.Join(entry.Report.Problems, "; "))
	case len(entry.Report.Problems) > 0:
		// Structurally fine but worth flagging, e.g. a wrong mimetype value.
		fmt.Printf("%s: ok (%s)\n", name, strings.Join(entry.Report.Problems, "; "))
	default:
		if !flagQuiet {
			fmt.Printf("%s: ok\n", name)
		}
	}
}

func scanError(failures int) error {
	if failures > 0 {
		return fmt.Errorf("%d input(s) could not be inspected", failures)
	}
	return nil
}

package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"epubfix/internal/core"

	"github.com/spf13/cobra"
)

var (
	// Version is set via ldflags during build
	Version = "dev"
	// Commit is set via ldflags during build
	Commit = "unknown"

	// Global flags
	flagJSON  bool
	flagQuiet bool

	flagOverwrite bool
)

// rootCmd represents the base command. Repairing is the whole point of the
// tool, so the root command does it directly rather than hiding it behind a
// subcommand.
var rootCmd = &cobra.Command{
	Use:   "epubfix <input-dir> <output-dir>",
	Short: "Rebuild EPUB files so readers accept them",
	Long: `epubfix rebuilds every .epub file (or extracted .epub directory) found in
an input directory so the mimetype entry comes first and is stored
uncompressed, as the EPUB packaging rules require.

Repaired copies are written to the output directory; inputs are never
modified. Existing outputs are skipped unless --overwrite is given.`,
	Args:          cobra.ExactArgs(2),
	RunE:          runRepair,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		printError(err)
		os.Exit(getExitCode(err))
	}
	return nil
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress non-essential output")

	rootCmd.Flags().BoolVar(&flagOverwrite, "overwrite", false, "Replace existing files in the output directory")

	// Add all subcommands
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(unpackCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)
}

func runRepair(cmd *cobra.Command, args []string) error {
	inputDir, outputDir := args[0], args[1]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	summary, err := core.Run(inputDir, outputDir, flagOverwrite, cfg)
	if err != nil {
		return err
	}

	if flagJSON {
		if err := outputJSON(summary); err != nil {
			return err
		}
		return summaryError(summary)
	}

	if summary.Total == 0 {
		if !flagQuiet {
			fmt.Println("No .epub files found.")
		}
		return nil
	}

	for _, result := range summary.Results {
		printResult(result)
	}

	if !flagQuiet {
		fmt.Printf("Finished: processed %d file(s), rebuilt %d, skipped %d, failed %d.\n",
			summary.Total, summary.Repaired, summary.Skipped, summary.Failed)
	}

	return summaryError(summary)
}

// printResult prints one per-input status line. Failures go to stderr so a
// piped run still surfaces them.
func printResult(result core.Result) {
	name := filepath.Base(result.Input)
	switch result.Status {
	case core.StatusRepaired:
		if !flagQuiet {
			fmt.Printf("[ok]   %s\n", name)
		}
	case core.StatusSkipped:
		if !flagQuiet {
			fmt.Printf("[skip] %s: destination exists (use --overwrite to replace)\n", name)
		}
	default:
		fmt.Fprintf(os.Stderr, "[fail] %s: %s\n", name, result.ErrorMsg)
	}
}

// summaryError turns hard failures into a non-zero exit. Skips alone do not
// fail the run.
func summaryError(summary *core.Summary) error {
	if summary.Failed > 0 {
		return fmt.Errorf("%d input(s) failed", summary.Failed)
	}
	return nil
}

// GetVersion returns the version string
func GetVersion() string {
	if Commit != "unknown" {
		return fmt.Sprintf("%s (%s)", Version, Commit[:7])
	}
	return Version
}

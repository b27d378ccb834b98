package cli

import (
	"fmt"
	"os"

	"epubfix/internal/core"

	"github.com/spf13/cobra"
)

var unpackFlagForce bool

var unpackCmd = &cobra.Command{
	Use:   "unpack <path.epub> <dest-dir>",
	Short: "Extract an EPUB into a directory for hand editing",
	Long: `Extracts an EPUB archive into a directory so its contents can be edited.
Point a later repair run at the parent directory to turn the tree back
into a conforming .epub.

Extraction refuses archives with unsafe entry paths or zip bomb
characteristics.`,
	Args: cobra.ExactArgs(2),
	RunE: runUnpack,
}

func init() {
	unpackCmd.Flags().BoolVarP(&unpackFlagForce, "force", "f", false, "Extract into a non-empty destination without asking")
}

func runUnpack(cmd *cobra.Command, args []string) error {
	epubPath, destDir := args[0], args[1]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if !unpackFlagForce {
		if nonEmpty, err := dirNonEmpty(destDir); err != nil {
			return err
		} else if nonEmpty {
			msg := fmt.Sprintf("Destination %q is not empty. Extract anyway?", destDir)
			if !confirmPrompt(msg) {
				return fmt.Errorf("destination %q is not empty (use --force to extract anyway)", destDir)
			}
		}
	}

	fileCount, totalSize, err := core.Unpack(epubPath, destDir, cfg.ToSecurityLimits())
	if err != nil {
		return err
	}

	if flagJSON {
		output := map[string]interface{}{
			"input":      epubPath,
			"dest":       destDir,
			"file_count": fileCount,
			"size_bytes": totalSize,
		}
		return outputJSON(output)
	}

	if !flagQuiet {
		fmt.Printf("Unpacked %s\n", epubPath)
		fmt.Printf("Destination: %s\n", destDir)
		fmt.Printf("Files: %d\n", fileCount)
		fmt.Printf("Size: %s\n", formatBytes(totalSize))
	}

	return nil
}

// dirNonEmpty reports whether path exists as a directory with entries in it.
func dirNonEmpty(path string) (bool, error) {
	entries, err := os.ReadDir(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read destination directory: %w", err)
	}
	return len(entries) > 0, nil
}
